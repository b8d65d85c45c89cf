// Command hashsig is a small diagnostic tool for exercising the signature
// schemes in this module: it generates a keypair, signs a message, and
// verifies the result, printing the public key and outcome for one scheme
// at a time. It never persists a key or signature to disk.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/lassemoldrup/hashsig/goldreich"
	"github.com/lassemoldrup/hashsig/horst"
	"github.com/lassemoldrup/hashsig/lamport"
	"github.com/lassemoldrup/hashsig/merkle"
	"github.com/lassemoldrup/hashsig/sphincs"
	"github.com/lassemoldrup/hashsig/winternitz"
)

var schemeNames = []string{"lamport", "winternitz", "horst", "merkle", "goldreich", "sphincs"}

func cmdDemo(c *cli.Context) error {
	name := c.String("scheme")
	msg := []byte(c.String("message"))

	switch name {
	case "lamport":
		return demoLamport(msg)
	case "winternitz":
		return demoWinternitz(msg)
	case "horst":
		return demoHorst(msg)
	case "merkle":
		return demoMerkle(msg)
	case "goldreich":
		return demoGoldreich(msg)
	case "sphincs":
		return demoSphincs(msg)
	default:
		return cli.Exit(fmt.Sprintf("unknown scheme %q, want one of %v", name, schemeNames), 1)
	}
}

func report(pubBytes []byte, ok bool) error {
	fmt.Printf("public key: %x\n", pubBytes)
	fmt.Printf("verified:   %v\n", ok)
	if !ok {
		return cli.Exit("signature did not verify", 1)
	}
	return nil
}

func demoLamport(msg []byte) error {
	p := lamport.Params{MsgLen: len(msg)}
	sk, pk := p.GenKeys(nil)
	sig := p.Sign(msg, sk)
	return report(pk.Bytes(), p.Verify(msg, pk, sig))
}

func demoWinternitz(msg []byte) error {
	p := winternitz.New(16)
	sk, pk := p.GenKeys(nil)
	sig := p.Sign(msg, sk)
	return report(pk.Bytes(), p.Verify(msg, pk, sig))
}

func demoHorst(msg []byte) error {
	p := horst.New(16, 32)
	sk, pk := p.GenKeys(nil)
	sig := p.Sign(msg, sk)
	return report(pk.Bytes(), p.Verify(msg, pk, sig))
}

func demoMerkle(msg []byte) error {
	p := merkle.Params[lamport.Key, lamport.Key, lamport.Signature]{
		Height: 4,
		OTS:    lamport.Params{MsgLen: len(msg)},
	}
	sk, pk := p.GenKeys(nil)
	sig := p.Sign(msg, sk)
	return report(pk.Bytes(), p.Verify(msg, pk, sig))
}

func demoGoldreich(msg []byte) error {
	// Inner nodes sign 32-byte hashes, so the OTS must cover at least that.
	msgLen := len(msg)
	if msgLen < 32 {
		msgLen = 32
	}
	p := goldreich.Params[lamport.Key, lamport.Key, lamport.Signature]{
		Height: 4,
		OTS:    lamport.Params{MsgLen: msgLen},
	}
	sk, pk := p.GenKeys(nil)
	sig := p.Sign(msg, sk)
	return report(pk.RootPublic.Bytes(), p.Verify(msg, pk, sig))
}

func demoSphincs(msg []byte) error {
	p := sphincs.Params[winternitz.Private, winternitz.Public, winternitz.Signature, horst.Private, horst.Public, horst.Signature]{
		Depth:  4,
		Height: 4,
		OTS:    winternitz.New(16),
		FTS:    horst.New(16, 32),
	}
	sk, pk := p.GenKeys(nil)
	sig := p.Sign(msg, sk)
	return report(pk.Bytes(), p.Verify(msg, pk, sig))
}

func cmdAlgs(c *cli.Context) error {
	for _, name := range schemeNames {
		fmt.Println(name)
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:  "hashsig",
		Usage: "exercise the hash-based signature schemes in this module",
		Commands: []*cli.Command{
			{
				Name:   "algs",
				Usage:  "list the available schemes",
				Action: cmdAlgs,
			},
			{
				Name:  "demo",
				Usage: "generate a keypair, sign a message and verify it under one scheme",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scheme", Value: "sphincs", Usage: "one of: lamport, winternitz, horst, merkle, goldreich, sphincs"},
					&cli.StringFlag{Name: "message", Value: "the quick brown fox", Usage: "message to sign"},
				},
				Action: cmdDemo,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
