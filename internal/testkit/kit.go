package testkit

import (
	"fmt"
	"math/rand"

	"data4viz/domain/dataset"
)

// GenerateSalesTable builds a deterministic synthetic sales dataset for
// tests and demos. Revenue is driven by marketing spend plus a regional
// offset plus seeded noise, so both numeric and categorical evidence exist
// by construction.
func GenerateSalesTable(rows int) *dataset.Table {
	rng := rand.New(rand.NewSource(42))
	regions := []string{"north", "south", "east", "west"}
	regionOffset := map[string]float64{"north": 0, "south": 400, "east": 150, "west": 250}
	channels := []string{"web", "retail", "partner"}

	revenue := make([]string, rows)
	spend := make([]string, rows)
	region := make([]string, rows)
	channel := make([]string, rows)
	orderID := make([]string, rows)

	for i := 0; i < rows; i++ {
		reg := regions[rng.Intn(len(regions))]
		sp := 100 + rng.Float64()*900
		rev := 3*sp + regionOffset[reg] + rng.NormFloat64()*50

		revenue[i] = fmt.Sprintf("%.2f", rev)
		spend[i] = fmt.Sprintf("%.2f", sp)
		region[i] = reg
		channel[i] = channels[rng.Intn(len(channels))]
		orderID[i] = fmt.Sprintf("ord-%06d", i)
	}

	return &dataset.Table{
		Name:    "sales.csv",
		Columns: []string{"revenue", "marketing_spend", "region", "channel", "order_id"},
		Cells: map[string][]string{
			"revenue":         revenue,
			"marketing_spend": spend,
			"region":          region,
			"channel":         channel,
			"order_id":        orderID,
		},
	}
}

// SalesCSV renders the synthetic dataset as CSV content for upload tests
func SalesCSV(rows int) string {
	table := GenerateSalesTable(rows)
	out := "revenue,marketing_spend,region,channel,order_id\n"
	for i := 0; i < table.RowCount(); i++ {
		out += fmt.Sprintf("%s,%s,%s,%s,%s\n",
			table.Cells["revenue"][i],
			table.Cells["marketing_spend"][i],
			table.Cells["region"][i],
			table.Cells["channel"][i],
			table.Cells["order_id"][i],
		)
	}
	return out
}
