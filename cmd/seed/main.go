// Seed tool for loading demo transactions into a running FraudShield instance.
//
// Usage:
//   go run cmd/seed/main.go -url http://localhost:8080 -tenant demo
//
// This tool:
//   1. Posts a built-in set of demo transactions (or a JSON file via -file)
//   2. Prints each assessment as it comes back
//   3. Summarizes the risk-level distribution
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

// SeedTransaction is one transaction to submit.
type SeedTransaction struct {
	Amount     float64 `json:"amount"`
	Payee      string  `json:"payee"`
	Timestamp  string  `json:"timestamp"`
	Reference  string  `json:"reference"`
	PayeeIsNew bool    `json:"payeeIsNew"`
}

// AssessmentResult is the subset of the API response the tool reports on.
type AssessmentResult struct {
	Transaction struct {
		ID        string  `json:"id"`
		RiskScore float64 `json:"riskScore"`
		RiskLevel string  `json:"riskLevel"`
	} `json:"transaction"`
	Explanation struct {
		Confidence int    `json:"confidence"`
		Summary    string `json:"explanation"`
	} `json:"explanation"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "FraudShield base URL")
	tenantID := flag.String("tenant", "demo", "Tenant ID for requests")
	apiKey := flag.String("api-key", "", "API key, if the server requires one")
	filePath := flag.String("file", "", "JSON file of transactions (default: built-in demo set)")
	flag.Parse()

	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: FraudShield not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure FraudShield is running:")
		fmt.Println("  go run cmd/fraudshield/main.go")
		os.Exit(1)
	}
	fmt.Println("✓ FraudShield is healthy")

	transactions := demoTransactions()
	if *filePath != "" {
		data, err := os.ReadFile(*filePath)
		if err != nil {
			fmt.Printf("ERROR: failed to read %s: %v\n", *filePath, err)
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &transactions); err != nil {
			fmt.Printf("ERROR: failed to parse %s: %v\n", *filePath, err)
			os.Exit(1)
		}
	}

	fmt.Printf("\nSeeding %d transactions as tenant %q...\n\n", len(transactions), *tenantID)

	client := &http.Client{Timeout: 10 * time.Second}
	levels := map[string]int{}
	errors := 0

	for _, tx := range transactions {
		result, err := submit(client, *baseURL, *tenantID, *apiKey, tx)
		if err != nil {
			errors++
			fmt.Printf("✗ %-24s | ERROR: %v\n", tx.Payee, err)
			continue
		}

		levels[result.Transaction.RiskLevel]++
		fmt.Printf("✓ %-24s | £%9.2f | %-6s (%.2f) | %s\n",
			tx.Payee,
			tx.Amount,
			result.Transaction.RiskLevel,
			result.Transaction.RiskScore,
			result.Explanation.Summary,
		)
	}

	fmt.Printf("\nDone: %d high, %d medium, %d low, %d errors\n",
		levels["high"], levels["medium"], levels["low"], errors)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func submit(client *http.Client, baseURL, tenantID, apiKey string, tx SeedTransaction) (*AssessmentResult, error) {
	body, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result AssessmentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

// demoTransactions covers each risk band and every scoring factor.
func demoTransactions() []SeedTransaction {
	return []SeedTransaction{
		{
			Amount:    120.50,
			Payee:     "Thames Water",
			Timestamp: "2026-08-28T10:30:00Z",
			Reference: "Monthly bill",
		},
		{
			Amount:    450,
			Payee:     "Acme Office Supplies",
			Timestamp: "2026-08-28T14:15:00Z",
			Reference: "Stationery order",
		},
		{
			Amount:     380,
			Payee:      "Green Gardens Ltd",
			Timestamp:  "2026-08-28T11:00:00Z",
			Reference:  "Landscaping deposit",
			PayeeIsNew: true,
		},
		{
			Amount:    2100,
			Payee:     "Prime Properties",
			Timestamp: "2026-08-28T20:45:00Z",
			Reference: "Q3 rent",
		},
		{
			Amount:     4200,
			Payee:      "ABC Holdings Ltd",
			Timestamp:  "2026-08-28T03:47:00Z",
			Reference:  "Invoice 2847",
			PayeeIsNew: true,
		},
		{
			Amount:     8900,
			Payee:      "Global Ventures Inc",
			Timestamp:  "2026-08-28T02:15:00Z",
			Reference:  "URGENT - wire transfer required immediately",
			PayeeIsNew: true,
		},
	}
}
