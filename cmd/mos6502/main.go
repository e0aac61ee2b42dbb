// Command mos6502 is a CLI front end over the cpu/asm/system packages:
// assemble source into a raw memory image, run an image, or
// disassemble one. Adapted from gintendo.go's flag-based main, moved
// onto cobra per oisee-z80-optimizer/cmd/z80opt/main.go's command
// layout (SPEC_FULL "MODULE MAP").
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/bdwalton/mos6502/cmd/mos6502/monitor"
	"github.com/bdwalton/mos6502/disasm"
	"github.com/bdwalton/mos6502/system"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mos6502",
		Short: "MOS 6502 assembler, disassembler and emulator",
	}

	rootCmd.AddCommand(assembleCmd(), runCmd(), disasmCmd(), monitorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func assembleCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "assemble <src>",
		Short: "Assemble a source file into a raw memory image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			s := system.New()
			s.OnOperationCompleted = func(message string, success bool) {
				fmt.Fprintln(os.Stderr, message)
			}

			res, aerr := s.Assemble(string(src))
			if aerr != nil {
				return aerr
			}

			if out == "" {
				out = strings.TrimSuffix(args[0], ".s") + ".bin"
			}
			image := s.SaveImage(res.AddressRange.First, res.AddressRange.Last)
			if err := os.WriteFile(out, image, 0o644); err != nil {
				return err
			}

			fmt.Printf("wrote %d byte(s) [$%04X-$%04X] to %s\n",
				len(image), res.AddressRange.First, res.AddressRange.Last, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output image path (default: <src> with .bin extension)")
	return cmd
}

func runCmd() *cobra.Command {
	var pcFlag string
	var base string
	var trace bool
	var clockHz int

	cmd := &cobra.Command{
		Use:   "run <img>",
		Short: "Load a raw memory image and execute it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			baseAddr, err := parseAddr(base)
			if err != nil {
				return fmt.Errorf("--base: %w", err)
			}

			s := system.New()
			s.LoadImage(baseAddr, img)
			s.Reset()

			if pcFlag != "" {
				pc, err := parseAddr(pcFlag)
				if err != nil {
					return fmt.Errorf("--pc: %w", err)
				}
				s.CPU.PC = pc
			}

			if trace {
				s.OnStateChanged = func(snap system.Snapshot) {
					spew.Fdump(os.Stderr, snap)
				}
			}

			var clockPeriod time.Duration
			if clockHz > 0 {
				clockPeriod = time.Second / time.Duration(clockHz)
			}

			s.Run(context.Background(), true, clockPeriod)

			snap := s.Snapshot()
			fmt.Printf("halted: state=%v pc=$%04X a=$%02X x=$%02X y=$%02X sp=$%02X cycles=%d instructions=%d\n",
				snap.State, snap.PC, snap.A, snap.X, snap.Y, snap.SP, snap.Stats.Cycles, snap.Stats.Instructions)
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "$0000", "address the image is loaded at")
	cmd.Flags().StringVar(&pcFlag, "pc", "", "override the starting PC (default: reset vector)")
	cmd.Flags().BoolVar(&trace, "trace", false, "dump CPU state after every instruction")
	cmd.Flags().IntVar(&clockHz, "clock-hz", 0, "throttle execution to approximately this frequency (0 = unthrottled)")
	return cmd
}

func disasmCmd() *cobra.Command {
	var base string
	var from string
	var to string

	cmd := &cobra.Command{
		Use:   "disasm <img>",
		Short: "Disassemble a raw memory image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			baseAddr, err := parseAddr(base)
			if err != nil {
				return fmt.Errorf("--base: %w", err)
			}

			s := system.New()
			s.LoadImage(baseAddr, img)

			fromAddr := baseAddr
			if from != "" {
				if fromAddr, err = parseAddr(from); err != nil {
					return fmt.Errorf("--from: %w", err)
				}
			}
			toAddr := baseAddr + uint16(len(img)) - 1
			if to != "" {
				if toAddr, err = parseAddr(to); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}

			for _, l := range disasm.Listing(s.Memory, fromAddr, toAddr) {
				fmt.Println(l.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "$0000", "address the image is loaded at")
	cmd.Flags().StringVar(&from, "from", "", "first address to disassemble (default: --base)")
	cmd.Flags().StringVar(&to, "to", "", "last address to disassemble (default: end of image)")
	return cmd
}

func monitorCmd() *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "monitor <img>",
		Short: "Load a raw memory image and step through it interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			baseAddr, err := parseAddr(base)
			if err != nil {
				return fmt.Errorf("--base: %w", err)
			}

			s := system.New()
			s.LoadImage(baseAddr, img)
			s.Reset()

			return monitor.Run(s, s.CPU.PC)
		},
	}
	cmd.Flags().StringVar(&base, "base", "$0000", "address the image is loaded at")
	return cmd
}

// parseAddr parses a $hex, 0x-hex, or decimal address literal.
func parseAddr(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "$"):
		v, err := strconv.ParseUint(s[1:], 16, 16)
		return uint16(v), err
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		v, err := strconv.ParseUint(s[2:], 16, 16)
		return uint16(v), err
	default:
		v, err := strconv.ParseUint(s, 10, 16)
		return uint16(v), err
	}
}
