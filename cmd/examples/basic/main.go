package main

import (
	"context"
	"fmt"
	"os"

	"github.com/erain9/chunkbook/pkg/backend/chunked"
	"github.com/erain9/chunkbook/pkg/core"
	"github.com/erain9/chunkbook/pkg/render"
)

func main() {
	ctx := context.Background()

	// Initialize order book with small chunks so splits are visible
	book := core.NewOrderBook(
		chunked.NewSide(core.Buy, chunked.WithMaxChunkSize(4)),
		chunked.NewSide(core.Sell, chunked.WithMaxChunkSize(4)),
	)

	// Rest a ladder of bids and asks
	for i := int64(0); i < 6; i++ {
		if _, err := book.Create(ctx, core.Buy, 10+i, 100-i); err != nil {
			panic(err)
		}
		if _, err := book.Create(ctx, core.Sell, 10+i, 101+i); err != nil {
			panic(err)
		}
	}

	// Reprice the worst bid to the top, then cancel the best ask
	if !book.Update(ctx, 10, 100) {
		panic("order 10 not found")
	}
	removed, ok := book.Remove(ctx, 1)
	if !ok {
		panic("order 1 not found")
	}
	fmt.Printf("Removed: %s\n\n", removed)

	printer := render.New(os.Stdout)
	if err := book.Dump(ctx, core.Buy, printer); err != nil {
		panic(err)
	}
	if err := book.Dump(ctx, core.Sell, printer); err != nil {
		panic(err)
	}
	if err := printer.Flush(); err != nil {
		panic(err)
	}

	// Summary
	fmt.Print(book)
	if bids, ok := book.Side(core.Buy).(*chunked.Index); ok {
		fmt.Print(bids)
	}
}
