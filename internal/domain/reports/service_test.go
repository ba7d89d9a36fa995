package reports

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laluna/internal/core/id"
	"laluna/internal/core/types"
	"laluna/internal/domain/order"
)

type fakeSource struct {
	reports *order.Reports
	err     error
	months  int
}

func (f *fakeSource) Reports(_ context.Context, monthsBack int) (*order.Reports, error) {
	f.months = monthsBack
	return f.reports, f.err
}

func sampleReports() *order.Reports {
	return &order.Reports{
		Statistics: order.Statistics{
			TotalBilled:      types.MustMoney("25000.50"),
			TotalCollected:   types.MustMoney("15000.50"),
			TotalOutstanding: types.MustMoney("10000"),
			CountPaid:        1,
			CountUnpaid:      1,
			CountTotal:       2,
		},
		Monthly: []order.MonthlyRow{
			{Year: 2026, Month: 9, TotalBilled: types.MustMoney("25000.50"), TotalCollected: types.MustMoney("15000.50"), OrderCount: 2, PaidCount: 1, UnpaidCount: 1},
		},
		TopCustomers: []order.TopCustomer{
			{CustomerID: id.New(), Name: "María Gómez", TotalBilled: types.MustMoney("25000.50"), TotalCollected: types.MustMoney("15000.50"), TotalOutstanding: types.MustMoney("10000"), OrderCount: 2},
		},
		MonthsBack:  6,
		GeneratedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderPDF(t *testing.T) {
	out, err := RenderPDF("Verduleria La Luna", sampleReports())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}

func TestRenderPDF_Empty(t *testing.T) {
	out, err := RenderPDF("Verduleria La Luna", &order.Reports{MonthsBack: 3, GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestService_BuildPDF(t *testing.T) {
	src := &fakeSource{reports: sampleReports()}
	svc := NewService(src, "La Luna")

	out, err := svc.BuildPDF(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, 12, src.months)
	assert.NotEmpty(t, out)

	src.err = errors.New("db down")
	_, err = svc.BuildPDF(context.Background(), 6)
	assert.EqualError(t, err, "db down")
}
