package dto

import (
	"time"

	"laluna/internal/core/types"
	"laluna/internal/domain/order"
)

// StatisticsResponse aggregates a filtered set of orders.
type StatisticsResponse struct {
	TotalBilled      types.Money `json:"totalBilled"`
	TotalCollected   types.Money `json:"totalCollected"`
	TotalOutstanding types.Money `json:"totalOutstanding"`
	CountPaid        int         `json:"countPaid"`
	CountUnpaid      int         `json:"countUnpaid"`
	CountTotal       int         `json:"countTotal"`
}

// FromStatistics converts domain statistics.
func FromStatistics(s order.Statistics) StatisticsResponse {
	return StatisticsResponse{
		TotalBilled:      s.TotalBilled,
		TotalCollected:   s.TotalCollected,
		TotalOutstanding: s.TotalOutstanding,
		CountPaid:        s.CountPaid,
		CountUnpaid:      s.CountUnpaid,
		CountTotal:       s.CountTotal,
	}
}

// MonthlyRowResponse is one calendar month of sales.
type MonthlyRowResponse struct {
	Year           int         `json:"year"`
	Month          int         `json:"month"`
	TotalBilled    types.Money `json:"totalBilled"`
	TotalCollected types.Money `json:"totalCollected"`
	OrderCount     int         `json:"orderCount"`
	PaidCount      int         `json:"paidCount"`
	UnpaidCount    int         `json:"unpaidCount"`
}

// TopCustomerResponse ranks a customer by total billed.
type TopCustomerResponse struct {
	CustomerID       string      `json:"customerId"`
	Name             string      `json:"name"`
	TotalBilled      types.Money `json:"totalBilled"`
	TotalCollected   types.Money `json:"totalCollected"`
	TotalOutstanding types.Money `json:"totalOutstanding"`
	OrderCount       int         `json:"orderCount"`
}

// ReportsResponse is the sales dashboard.
type ReportsResponse struct {
	Statistics   StatisticsResponse    `json:"statistics"`
	Monthly      []MonthlyRowResponse  `json:"monthly"`
	TopCustomers []TopCustomerResponse `json:"topCustomers"`
	MonthsBack   int                   `json:"monthsBack"`
	GeneratedAt  time.Time             `json:"generatedAt"`
}

// FromReports converts the dashboard.
func FromReports(r *order.Reports) ReportsResponse {
	resp := ReportsResponse{
		Statistics:   FromStatistics(r.Statistics),
		Monthly:      make([]MonthlyRowResponse, 0, len(r.Monthly)),
		TopCustomers: make([]TopCustomerResponse, 0, len(r.TopCustomers)),
		MonthsBack:   r.MonthsBack,
		GeneratedAt:  r.GeneratedAt,
	}
	for _, m := range r.Monthly {
		resp.Monthly = append(resp.Monthly, MonthlyRowResponse(m))
	}
	for _, t := range r.TopCustomers {
		resp.TopCustomers = append(resp.TopCustomers, TopCustomerResponse{
			CustomerID:       t.CustomerID.String(),
			Name:             t.Name,
			TotalBilled:      t.TotalBilled,
			TotalCollected:   t.TotalCollected,
			TotalOutstanding: t.TotalOutstanding,
			OrderCount:       t.OrderCount,
		})
	}
	return resp
}
