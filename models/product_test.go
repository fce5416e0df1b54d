package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAvailableStock(t *testing.T) {
	cases := []struct {
		name      string
		onHand    int64
		allocated int64
		want      int64
	}{
		{"no allocation", 10, 0, 10},
		{"partial allocation", 10, 4, 6},
		{"fully allocated", 10, 10, 0},
		{"over allocated goes negative", 10, 12, -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{
				QuantityInStock: decimal.NewFromInt(tc.onHand),
				AllocatedStock:  decimal.NewFromInt(tc.allocated),
			}
			if got := p.AvailableStock(); !got.Equal(decimal.NewFromInt(tc.want)) {
				t.Errorf("AvailableStock() = %s, want %d", got, tc.want)
			}
		})
	}
}

func TestOrderItemsScan(t *testing.T) {
	raw := `[{"product_id":1,"sku":"W-1","product_name":"Widget","quantity":"2","unit_price":"5","line_total":"10"}]`

	var items OrderItems
	if err := items.Scan([]byte(raw)); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(items) != 1 || items[0].ProductId != 1 || !items[0].Quantity.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Scan() = %+v", items)
	}

	var empty OrderItems
	if err := empty.Scan(nil); err != nil {
		t.Errorf("Scan(nil) error: %v", err)
	}
	if empty != nil {
		t.Errorf("Scan(nil) should leave items nil, got %+v", empty)
	}
}

func TestStatusValidation(t *testing.T) {
	if !OrderStatusPending.IsValid() || OrderStatus("unknown").IsValid() {
		t.Error("order status validation broken")
	}
	if !PurchaseOrderStatusDraft.IsValid() || PurchaseOrderStatus("finished").IsValid() {
		t.Error("purchase order status validation broken")
	}
	if !RoleBrandAdmin.IsValid() || RoleName("ceo").IsValid() {
		t.Error("role validation broken")
	}
}
