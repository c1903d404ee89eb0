package main

import (
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/bankfront/internal/calc"
	"github.com/dmitrijs2005/bankfront/internal/client/cli"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func calcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Loan and deposit estimators",
	}
	cmd.AddCommand(emiCmd(), fdCmd(), rdCmd())
	return cmd
}

func parseDecimal(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %q is not a number", name, s)
	}
	return d, nil
}

func parseMonths(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("months: %q is not a whole number", s)
	}
	return n, nil
}

func emiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "emi <principal> <annual-rate> <months>",
		Short:   "Equated monthly instalment of a loan",
		Example: "  bankfront calc emi 100000 10.5 12",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, err := parseDecimal("principal", args[0])
			if err != nil {
				return err
			}
			rate, err := parseDecimal("rate", args[1])
			if err != nil {
				return err
			}
			months, err := parseMonths(args[2])
			if err != nil {
				return err
			}

			r, err := calc.EMI(principal, rate, months)
			if err != nil {
				return err
			}
			cli.PrintEMI(cmd.OutOrStdout(), r)
			return nil
		},
	}
}

func fdCmd() *cobra.Command {
	var senior bool

	cmd := &cobra.Command{
		Use:     "fd <principal> <months>",
		Short:   "Fixed deposit maturity at the standard rate card",
		Example: "  bankfront calc fd 100000 12 --senior",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, err := parseDecimal("principal", args[0])
			if err != nil {
				return err
			}
			months, err := parseMonths(args[1])
			if err != nil {
				return err
			}

			r, err := calc.FD(principal, months, calc.DefaultFDRates(), senior)
			if err != nil {
				return err
			}
			cli.PrintFD(cmd.OutOrStdout(), r)
			return nil
		},
	}
	cmd.Flags().BoolVar(&senior, "senior", false, "use the senior citizen rate")
	return cmd
}

func rdCmd() *cobra.Command {
	var rate string

	cmd := &cobra.Command{
		Use:     "rd <monthly> <months>",
		Short:   "Recurring deposit maturity",
		Example: "  bankfront calc rd 1000 12 --rate 6.5",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			monthly, err := parseDecimal("monthly", args[0])
			if err != nil {
				return err
			}
			months, err := parseMonths(args[1])
			if err != nil {
				return err
			}

			annual := calc.FDRateFor(calc.DefaultFDRates(), months, false)
			if rate != "" {
				if annual, err = parseDecimal("rate", rate); err != nil {
					return err
				}
			}

			r, err := calc.RD(monthly, annual, months)
			if err != nil {
				return err
			}
			cli.PrintRD(cmd.OutOrStdout(), r)
			return nil
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "annual rate in percent, defaults to the rate card")
	return cmd
}
