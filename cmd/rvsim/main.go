/*
 * rvsim - CLI host for the ELF loader/container.
 *
 * Copyright 2025, rvsim contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// rvsim is a thin inspection host over elfimage.Container. It loads an
// ELF image and lets the user browse sections and symbols interactively;
// it has no decoder, so it cannot execute anything.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	getopt "github.com/pborman/getopt/v2"
	"github.com/peterh/liner"

	"github.com/rvsim/gorv/elfimage"
	"github.com/rvsim/gorv/internal/rvlog"
)

var logger *slog.Logger

func main() {
	optELF := getopt.StringLong("elf", 'e', "", "ELF image to load")
	optHeadersOnly := getopt.BoolLong("headers-only", 0, "Load headers only, skip section/symbol materialisation")
	optXLen := getopt.IntLong("xlen", 'x', 64, "Integer register width reported by the inspector (32 or 64)")
	optSym := getopt.StringLong("sym", 's', "", "Print the symbol at this name or address and exit")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file io.Writer
	if *optLogFile != "" {
		f, cerr := os.Create(*optLogFile)
		if cerr != nil {
			fmt.Fprintln(os.Stderr, "rvsim: cannot create log file:", cerr)
			os.Exit(1)
		}
		file = f
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	logger = slog.New(rvlog.NewHandler(file, &slog.HandlerOptions{Level: programLevel}, false))
	slog.SetDefault(logger)

	if *optXLen != 32 && *optXLen != 64 {
		logger.Error("xlen must be 32 or 64")
		os.Exit(1)
	}

	if *optELF == "" {
		getopt.Usage()
		os.Exit(1)
	}

	var c *elfimage.Container
	var err error
	if *optHeadersOnly {
		c, err = elfimage.OpenHeadersOnly(*optELF)
	} else {
		c, err = elfimage.Open(*optELF)
	}
	if err != nil {
		logger.Error("failed to load ELF image", "path", *optELF, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded ELF image", "path", *optELF, "class", c.Class.String(), "sections", len(c.Sections))

	if *optSym != "" {
		printSymbol(c, *optSym)
		return
	}

	runInspector(c, *optXLen)
}

func printSymbol(c *elfimage.Container, query string) {
	if addr, perr := strconv.ParseUint(strings.TrimPrefix(query, "0x"), 16, 64); perr == nil {
		if sym, ok := c.SymbolByAddress(addr); ok {
			fmt.Printf("%s = %#x (size %d)\n", c.SymbolNameOf(sym), sym.Value, sym.Size)
			return
		}
	}
	if sym, ok := c.SymbolByName(query); ok {
		fmt.Printf("%s = %#x (size %d)\n", c.SymbolNameOf(sym), sym.Value, sym.Size)
		return
	}
	fmt.Println("not found:", query)
}

func runInspector(c *elfimage.Container, xlen int) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		var out []string
		for _, cmd := range []string{"sym", "addr", "sections", "quit"} {
			if strings.HasPrefix(cmd, partial) {
				out = append(out, cmd)
			}
		}
		return out
	})

	fmt.Printf("rvsim inspector (rv%d) - commands: sym <name>, addr <hex>, sections, quit\n", xlen)
	for {
		input, err := line.Prompt("rvsim> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			logger.Error("error reading line", "error", err)
			return
		}
		line.AppendHistory(input)
		if runCommand(c, input) {
			return
		}
	}
}

func runCommand(c *elfimage.Container, input string) (quit bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "quit", "exit":
		return true
	case "sym":
		if len(fields) != 2 {
			fmt.Println("usage: sym <name>")
			return false
		}
		if sym, ok := c.SymbolByName(fields[1]); ok {
			fmt.Printf("%s = %#x (size %d)\n", c.SymbolNameOf(sym), sym.Value, sym.Size)
		} else {
			fmt.Println("not found:", fields[1])
		}
	case "addr":
		if len(fields) != 2 {
			fmt.Println("usage: addr <hex>")
			return false
		}
		addr, perr := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 64)
		if perr != nil {
			fmt.Println("bad address:", fields[1])
			return false
		}
		if sym, ok := c.SymbolByAddress(addr); ok {
			fmt.Printf("%s = %#x (size %d)\n", c.SymbolNameOf(sym), sym.Value, sym.Size)
		} else {
			fmt.Println("not found:", fields[1])
		}
	case "sections":
		printSections(c)
	default:
		fmt.Println("unknown command:", fields[0])
	}
	return false
}

func printSections(c *elfimage.Container) {
	for i := range c.Sections {
		sh := c.Sections[i].Header
		fmt.Printf("%2d %-20s addr=%#x size=%#x off=%#x\n", i, c.SectionName(i), sh.Addr, sh.Size, sh.Offset)
	}
}
