package fallback

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

const defaultListLimit = 5

type charge struct {
	ID             string `json:"id"`
	Object         string `json:"object"`
	Amount         int64  `json:"amount"`
	AmountCaptured int64  `json:"amount_captured"`
	Currency       string `json:"currency"`
	Description    string `json:"description"`
	Created        int64  `json:"created"`
	Paid           bool   `json:"paid"`
	Status         string `json:"status"`
}

type chargeList struct {
	Object       string   `json:"object"`
	Data         []charge `json:"data"`
	HasMore      bool     `json:"has_more"`
	TotalRevenue int64    `json:"total_revenue"`
}

type customer struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Created int64  `json:"created"`
}

type customerList struct {
	Object  string     `json:"object"`
	Data    []customer `json:"data"`
	HasMore bool       `json:"has_more"`
}

type money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type balance struct {
	Object    string  `json:"object"`
	Available []money `json:"available"`
	Pending   []money `json:"pending"`
	Livemode  bool    `json:"livemode"`
}

// sampleCharges are listed newest first, each a day older than the previous.
var sampleCharges = []struct {
	id          string
	amount      int64
	description string
}{
	{"ch_3Qf2p7K8Z5J1nB2z", 2500, "Premium subscription - Monthly"},
	{"ch_3Qf1m8K8Z5J1nB3a", 5000, "API usage fees - November 2024"},
	{"ch_3Qe9p1K8Z5J1nB4b", 1500, "Additional storage - 100GB"},
}

var sampleCustomers = []struct {
	id    string
	name  string
	email string
}{
	{"cus_R4cT7vLpQ2mN8x", "Asha Rao", "asha.rao@example.com"},
	{"cus_R4bY2kHs9dJ3wE", "Vikram Mehta", "vikram.mehta@example.com"},
	{"cus_R4aP5nGt1fL6zQ", "Priya Nair", "priya.nair@example.com"},
}

func (p *Provider) charges(args map[string]any) (any, error) {
	limit, err := limitArg(args)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range sampleCharges {
		total += c.amount
	}

	n := min(limit, len(sampleCharges))
	data := make([]charge, 0, n)
	for i, c := range sampleCharges[:n] {
		data = append(data, charge{
			ID:             c.id,
			Object:         "charge",
			Amount:         c.amount,
			AmountCaptured: c.amount,
			Currency:       "usd",
			Description:    c.description,
			Created:        p.daysAgo(i + 1),
			Paid:           true,
			Status:         "succeeded",
		})
	}

	return chargeList{
		Object:       "list",
		Data:         data,
		HasMore:      n < len(sampleCharges),
		TotalRevenue: total,
	}, nil
}

func (p *Provider) balance(_ map[string]any) (any, error) {
	return balance{
		Object:    "balance",
		Available: []money{{Amount: 7500, Currency: "usd"}},
		Pending:   []money{{Amount: 1500, Currency: "usd"}},
	}, nil
}

func (p *Provider) customers(args map[string]any) (any, error) {
	limit, err := limitArg(args)
	if err != nil {
		return nil, err
	}

	n := min(limit, len(sampleCustomers))
	data := make([]customer, 0, n)
	for i, c := range sampleCustomers[:n] {
		data = append(data, customer{
			ID:      c.id,
			Object:  "customer",
			Name:    c.name,
			Email:   c.email,
			Created: p.daysAgo(30 * (i + 1)),
		})
	}

	return customerList{Object: "list", Data: data, HasMore: n < len(sampleCustomers)}, nil
}

func (p *Provider) daysAgo(days int) int64 {
	return p.epoch.Add(-time.Duration(days) * 24 * time.Hour).Unix()
}

// limitArg reads the optional positive 'limit' argument.
func limitArg(args map[string]any) (int, error) {
	raw, ok := args["limit"]
	if !ok || raw == nil {
		return defaultListLimit, nil
	}

	var limit float64
	switch v := raw.(type) {
	case int:
		limit = float64(v)
	case int64:
		limit = float64(v)
	case float64:
		limit = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("'limit' must be a number: %w", err)
		}
		limit = f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("'limit' must be a number: %w", err)
		}
		limit = f
	default:
		return 0, fmt.Errorf("'limit' must be a number, got %T", raw)
	}

	if limit < 1 || limit != math.Trunc(limit) {
		return 0, fmt.Errorf("'limit' must be a positive integer, got %v", raw)
	}

	return int(limit), nil
}
