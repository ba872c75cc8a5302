// Command stegan embeds a payload into, or extracts one from, a 24-bit
// RGB raster image using key-derived LSB steganography.
//
//	stegan -i [-s] [-d] <inputImg> <messageFile> <password>
//	stegan -e [-s] <inputImg> <outputFile> <password>
package main

import (
	"fmt"
	"os"

	"github.com/op/go-logging"
	"github.com/urfave/cli"

	"github.com/zanicar/steganographer/engine"
)

var log = logging.MustGetLogger("stegan")

func init() {
	backend := logging.NewLogBackend(os.Stdout, "", 0)
	formatter := logging.MustStringFormatter(`%{message}`)
	logging.SetBackend(logging.NewBackendFormatter(backend, formatter))
}

func main() {
	app := cli.NewApp()
	app.Name = "stegan"
	app.Usage = "hide or recover a payload in a 24-bit raster image"
	app.UsageText = "stegan -i [-s] [-d] <inputImg> <messageFile> <password>\n" +
		"   stegan -e [-s] <inputImg> <outputFile> <password>"
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "i", Usage: "embed a message into an image"},
		cli.BoolFlag{Name: "e", Usage: "extract a message from an image"},
		cli.BoolFlag{Name: "s", Usage: "Sobel mode: restrict writes to edge pixels"},
		cli.BoolFlag{Name: "d", Usage: "dump the Sobel edge mask to sobel.png (embed only)"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		if ec, ok := err.(cli.ExitCoder); ok {
			os.Exit(ec.ExitCode())
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	embedMode := c.Bool("i")
	extractMode := c.Bool("e")
	sobel := c.Bool("s")
	dumpSobel := c.Bool("d")
	args := c.Args()

	if embedMode == extractMode || len(args) != 3 {
		cli.ShowAppHelp(c)
		return cli.NewExitError("wrong parameters", -1)
	}

	inputImg := args.Get(0)
	secondArg := args.Get(1)
	password := []byte(args.Get(2))

	eng := engine.New()
	if err := eng.Load(inputImg); err != nil {
		log.Errorf("failed to load %q: %v", inputImg, err)
		return cli.NewExitError("", wrongModeExitCode(embedMode))
	}

	if embedMode {
		return runEmbed(eng, inputImg, secondArg, password, sobel, dumpSobel)
	}
	return runExtract(eng, secondArg, password, sobel)
}

func runEmbed(eng *engine.Engine, inputImg, messageFile string, password []byte, sobel, dumpSobel bool) error {
	if sobel {
		log.Notice("inserting using Sobel mode")
	} else {
		log.Notice("inserting using normal mode")
	}

	if dumpSobel {
		if err := eng.DumpEdgeMask("sobel.png"); err != nil {
			log.Warningf("could not write sobel.png: %v", err)
		}
	}

	data, err := os.ReadFile(messageFile)
	if err != nil {
		log.Errorf("message file: %v", err)
		return cli.NewExitError("", 1)
	}

	if err := eng.Embed(password, data, sobel); err != nil {
		log.Errorf("cannot insert: %v", err)
		return cli.NewExitError("", 1)
	}

	outName := outputName(inputImg)
	if err := eng.Save(outName); err != nil {
		log.Errorf("save: %v", err)
		return cli.NewExitError("", 1)
	}

	log.Notice("file inserted correctly")
	return nil
}

func runExtract(eng *engine.Engine, outputFile string, password []byte, sobel bool) error {
	if sobel {
		log.Notice("extracting using Sobel mode")
	} else {
		log.Notice("extracting using normal mode")
	}

	data, err := eng.Extract(password, sobel)
	if err != nil {
		// InvalidHeader, DecryptFailed and DecompressFailed are folded
		// into one message so a failed extraction does not disclose
		// which stage rejected the password.
		log.Error("nothing extracted")
		return cli.NewExitError("", 2)
	}

	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		log.Errorf("output file: %v", err)
		return cli.NewExitError("", 2)
	}

	log.Notice("file extracted correctly")
	return nil
}

// outputName derives cod_<inputImgBase>.png from the input path, assuming
// its extension is exactly 4 characters including the dot.
func outputName(inputImg string) string {
	base := inputImg
	if len(base) > 4 {
		base = base[:len(base)-4]
	}
	return fmt.Sprintf("cod_%s.png", base)
}

// wrongModeExitCode picks the failure exit code (1 for embed, 2 for
// extract) for a load failure before mode-specific work has begun.
func wrongModeExitCode(embedMode bool) int {
	if embedMode {
		return 1
	}
	return 2
}
