package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/auction"
)

func price(args []string) error {
	fs := flag.NewFlagSet("price", flag.ExitOnError)
	startingPrice := fs.Uint64("starting-price", 100, "Starting price")
	reservePrice := fs.Uint64("reserve-price", 20, "Reserve price floor")
	deltaPrice := fs.Uint64("delta-price", 10, "Price drop per round")
	roundBlocks := fs.Uint64("round-blocks", 5, "Blocks per round")
	startingBlock := fs.Uint64("starting-block", 100, "Block the auction opens at")
	from := fs.Uint64("from", 0, "First block to print")
	to := fs.Uint64("to", 0, "Last block to print (default: first block at reserve)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fracvault price [options]

Print the Dutch auction price schedule for a block range.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	s := auction.Settings{
		StartingPrice: uint256.NewInt(*startingPrice),
		ReservePrice:  uint256.NewInt(*reservePrice),
		DeltaPrice:    uint256.NewInt(*deltaPrice),
		RoundBlocks:   *roundBlocks,
		StartingBlock: *startingBlock,
	}
	if err := s.Validate(0); err != nil {
		return err
	}

	last := *to
	if last == 0 {
		// Stop one round past the block where the price reaches reserve.
		span := *startingPrice - *reservePrice
		rounds := uint64(0)
		if *deltaPrice > 0 {
			rounds = span / *deltaPrice
			if span%*deltaPrice != 0 {
				rounds++
			}
		}
		last = *startingBlock + (*roundBlocks)*(rounds+1)
	}

	fmt.Printf("%-12s %-12s %s\n", "BLOCK", "PRICE", "NEXT CHANGE")
	for block := *from; block <= last; block += *roundBlocks {
		p := s.PriceAt(block)
		fmt.Printf("%-12d %-12s %d\n", block, p.Dec(), s.NextPriceChangeBlock(block))
	}
	return nil
}
