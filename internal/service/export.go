package service

import (
	"encoding/csv"
	"io"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

const exportDateLayout = "2006-01-02 15:04:05"

var exportHeader = []string{
	"Order ID", "Customer Name", "Date", "Total Amount", "Currency", "Tax Collected", "Payment Method",
}

// WriteOrdersCSV writes orders with amounts in each order's own currency.
func WriteOrdersCSV(w io.Writer, orders []*models.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}

	for _, o := range orders {
		display := o.Display()
		record := []string{
			o.ID,
			o.Customer.Name,
			o.Date.Format(exportDateLayout),
			display.Total,
			display.Currency.Code,
			display.Tax,
			string(o.PaymentMethod),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
