package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/ecdsa"
	"github.com/holiman/uint256"

	"github.com/fracvault-xyz/go-fracvault/auction"
	"github.com/fracvault-xyz/go-fracvault/chain"
	"github.com/fracvault-xyz/go-fracvault/deed"
	"github.com/fracvault-xyz/go-fracvault/eventlog"
	"github.com/fracvault-xyz/go-fracvault/host"
	"github.com/fracvault-xyz/go-fracvault/vault"
)

func simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	pixels := fs.Uint64("pixels", 1000, "Total pixel capacity of the parent asset")
	players := fs.Uint64("players", 5, "Number of contributors redeeming deeds")
	jackpots := fs.Uint64("jackpots", 3, "Number of sponsor-funded jackpots")
	seed := fs.String("seed", "simulation", "Entropy label for the randomness beacon")
	out := fs.String("out", "", "Write the operation journal as JSONL to this file")
	db := fs.String("db", "", "Write the operation journal to this SQLite database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fracvault simulate [options]

Run a full vault lifecycle against an in-memory host environment:
initialization, deed redemption, Dutch auction sale, proportional
withdrawals, and the randomized jackpot draw. The operation journal
can be written out for inspection with 'fracvault events'.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *players == 0 || *pixels == 0 {
		return fmt.Errorf("players and pixels must be positive")
	}
	if *players < *jackpots {
		return fmt.Errorf("need at least as many players (%d) as jackpots (%d)", *players, *jackpots)
	}
	if *players > *pixels {
		return fmt.Errorf("cannot split %d pixels across %d players", *pixels, *players)
	}

	var sink eventlog.Sink
	memory := &eventlog.Memory{}
	sink = memory
	switch {
	case *db != "":
		store, err := eventlog.OpenStore(*db)
		if err != nil {
			return err
		}
		defer store.Close()
		sink = store
	case *out != "":
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create journal: %w", err)
		}
		defer f.Close()
		sink = eventlog.NewJSONLWriter(f)
	}

	curatorKey, err := ecdsa.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate curator key: %w", err)
	}
	curator := chain.PubKeyAddress(&curatorKey.PublicKey)
	self := chain.BytesToAddress([]byte{0x7a, 0x01})
	asset := vault.AssetRef{
		Contract: chain.BytesToAddress([]byte{0xcc, 0x01}),
		TokenID:  uint256.NewInt(1),
	}

	registry := host.NewRegistry()
	registry.MintAsset(self, asset.TokenID)
	parent := host.NewAsset()
	oracle := host.NewOracle(uint256.NewInt(10))
	payouts := &host.Payouts{}

	v := vault.New(vault.Config{
		Self:     self,
		Registry: registry,
		Parent:   parent,
		Oracle:   oracle,
		Payer:    payouts,
		Journal:  sink,
	})

	block := uint64(1)
	if err := v.Initialize(vault.Call{Caller: curator, Block: block}, curator, asset, *pixels); err != nil {
		return err
	}

	settings := auction.Settings{
		StartingPrice: uint256.NewInt(100),
		ReservePrice:  uint256.NewInt(20),
		DeltaPrice:    uint256.NewInt(10),
		RoundBlocks:   5,
		StartingBlock: 100,
	}
	if err := v.ConfigureAuction(vault.Call{Caller: curator, Block: block}, settings); err != nil {
		return err
	}

	sponsor := chain.BytesToAddress([]byte{0xaa, 0x01})
	for i := uint64(0); i < *jackpots; i++ {
		parent.AddJackpot(vault.Jackpot{
			Sponsor: sponsor,
			Value:   uint256.NewInt(1000 * (i + 1)),
			Text:    fmt.Sprintf("sponsored jackpot %d", i),
		})
	}

	// Contributors redeem equal allocations; the last one takes the
	// remainder so the capacity fills exactly.
	share := *pixels / *players
	contributors := make([]chain.Address, *players)
	for i := uint64(0); i < *players; i++ {
		block++
		contributors[i] = chain.BytesToAddress([]byte{0x50, byte(i + 1)})
		allocation := share
		if i == *players-1 {
			allocation = *pixels - share*(*players-1)
		}
		proof := []byte(fmt.Sprintf("score-%d", i))
		parent.RegisterScore(i, allocation, proof)

		d := &deed.Deed{
			ParentContract: asset.Contract,
			ParentTokenID:  asset.TokenID,
			PlayerIndex:    i,
			Player:         contributors[i],
			Pixels:         allocation,
			ScoreProof:     proof,
		}
		if err := d.Sign(curatorKey); err != nil {
			return fmt.Errorf("sign deed %d: %w", i, err)
		}
		if err := v.Redeem(vault.Call{Caller: contributors[i], Block: block}, d); err != nil {
			return fmt.Errorf("redeem deed %d: %w", i, err)
		}
	}
	fmt.Printf("redeemed %d pixels across %d contributors\n", v.Stats().RedeemedPixels, *players)

	// Let the price decay a couple of rounds, then buy.
	block = settings.StartingBlock + 2*settings.RoundBlocks + 2
	buyer := chain.BytesToAddress([]byte{0xb1})
	salePrice, err := v.Price(block)
	if err != nil {
		return err
	}
	if err := v.Settle(vault.Call{Caller: buyer, Block: block, Value: salePrice.Clone()}); err != nil {
		return err
	}
	fmt.Printf("sold at block %d for %s\n", block, v.FinalPrice().Dec())

	for _, c := range contributors {
		block++
		if err := v.Withdraw(vault.Call{Caller: c, Block: block}); err != nil {
			return fmt.Errorf("withdraw %s: %w", c, err)
		}
	}
	fmt.Printf("paid out %d withdrawals, %s residue retained\n", v.Stats().TotalWithdrawals, v.Funds().Dec())

	if *jackpots > 0 {
		block++
		if err := v.RequestRandomization(vault.Call{Caller: curator, Block: block, Value: oracle.Fee.Clone()}); err != nil {
			return err
		}
		oracle.Publish(v.RandomizationBlock(), []byte(*seed))
		block++
		if err := v.SettleWinners(vault.Call{Caller: buyer, Block: block}); err != nil {
			return err
		}
		for _, c := range contributors {
			record, ok := v.JackpotByWinner(c)
			if !ok || !record.Awarded {
				continue
			}
			block++
			if err := v.ClaimJackpot(vault.Call{Caller: c, Block: block}); err != nil {
				return fmt.Errorf("claim by %s: %w", c, err)
			}
			jp, err := v.JackpotByIndex(record.Index)
			if err != nil {
				return err
			}
			fmt.Printf("jackpot %d (%s) claimed by %s\n", record.Index, jp.Value.Dec(), c)
		}
	}

	if err := v.CheckInvariants(); err != nil {
		return fmt.Errorf("invariant check: %w", err)
	}
	if sink == memory {
		fmt.Printf("journal: %d events (pass -out or -db to keep them)\n", len(memory.Events))
	}
	fmt.Println("simulation complete")
	return nil
}
