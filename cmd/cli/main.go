package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "goinvoice-cli",
		Short: "GoInvoice CLI tool",
		Long:  `A command line interface for interacting with the GoInvoice API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoInvoice API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Invoice commands
	invoiceCmd := &cobra.Command{
		Use:   "invoice",
		Short: "Invoice operations",
	}

	invoiceCmd.AddCommand(invoiceGetCmd(), invoiceStatusCmd())
	rootCmd.AddCommand(invoiceCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func invoiceGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <invoice-id>",
		Short: "Fetch the full invoice aggregate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := fetchJSON("/api/v1/invoices/" + args[0] + "/")
			if err != nil {
				return err
			}

			printJSON(result)
			return nil
		},
	}
}

func invoiceStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <invoice-id>",
		Short: "Show the derived payment status of an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := fetchJSON("/api/v1/invoices/" + args[0] + "/summary")
			if err != nil {
				return err
			}

			fmt.Printf("Status: %v\n", result["status"])
			fmt.Printf("Total: %v %v\n", result["total_amount"], result["currency"])
			fmt.Printf("Paid: %v\n", result["total_paid"])
			fmt.Printf("Remaining: %v\n", result["remaining_amount"])
			fmt.Printf("Overdue: %v\n", result["overdue"])

			return nil
		},
	}
}

func fetchJSON(path string) (map[string]any, error) {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return result, nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to encode: %v\n", err)
		return
	}

	fmt.Println(string(data))
}
