package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are stored as bare JSON numbers in the database files, not as
	// quoted strings. The dashboard reads the same files.
	decimal.MarshalJSONWithoutQuotes = true
}

// IST is the shop's display timezone. Order and payment timestamps are
// recorded in it.
var IST = time.FixedZone("IST", 5*3600+30*60)

const (
	// StampLayout is the order/payment timestamp format, e.g.
	// "2025-01-02 - 03:04:05PM".
	StampLayout = "2006-01-02 - 03:04:05PM"
	// JoinedLayout is the customer registration timestamp format.
	JoinedLayout = "2006-01-02 15:04:05"
)

// Stamp formats t for the order/payment timestamp fields.
func Stamp(t time.Time) string {
	return t.In(IST).Format(StampLayout)
}

// DiscordID is a Discord snowflake. Older database files store it as a bare
// JSON number, newer ones as a string; both decode to the string form.
type DiscordID string

func (d *DiscordID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DiscordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = DiscordID(n.String())
	return nil
}

type Product struct {
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
	AddedAt     time.Time       `json:"added_at"`
}

type OrderStatus string

const (
	OrderPendingPayment    OrderStatus = "Pending Payment"
	OrderWaitingForPayment OrderStatus = "Waiting for Payment"
	OrderCompleted         OrderStatus = "Completed"
	OrderFailed            OrderStatus = "Failed"
	OrderDelivered         OrderStatus = "Delivered"
)

type Order struct {
	OrderID     string          `json:"order_id"`
	UserID      DiscordID       `json:"user_id"`
	UserName    string          `json:"user_name"`
	Item        string          `json:"item"`
	Amount      decimal.Decimal `json:"amount"`
	Status      OrderStatus     `json:"status"`
	Timestamp   string          `json:"timestamp"`
	PaymentID   string          `json:"payment_id,omitempty"`
	DeliveredAt string          `json:"delivered_at,omitempty"`
}

type PaymentStatus string

const (
	PaymentWaiting  PaymentStatus = "waiting"
	PaymentFinished PaymentStatus = "finished"
	PaymentFailed   PaymentStatus = "failed"
	PaymentTimeout  PaymentStatus = "timeout"
)

// Terminal reports whether no further status transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentFinished || s == PaymentFailed || s == PaymentTimeout
}

type Payment struct {
	UserID     DiscordID       `json:"user_id"`
	PurchaseID string          `json:"purchase_id"`
	PaymentID  string          `json:"payment_id"`
	AmountUSD  decimal.Decimal `json:"amount_usd"`
	LtcAmount  decimal.Decimal `json:"ltc_amount"`
	Address    string          `json:"address"`
	Status     PaymentStatus   `json:"status"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  *string         `json:"updated_at"`
}

type Customer struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Joined     string    `json:"joined"`
	DiscordTag string    `json:"discord_tag"`
	DiscordID  DiscordID `json:"discord_id"`
}

// OrdersDoc is the on-disk layout of orders_database.json. An order id lives
// in exactly one bucket at a time; moving between buckets is a pop-and-insert.
type OrdersDoc struct {
	PendingPayment  map[string]*Order `json:"pending_payment_orders"`
	PendingDelivery map[string]*Order `json:"pending_delivery_orders"`
	Delivered       map[string]*Order `json:"delivered_orders"`
}

// PaymentsDoc is the on-disk layout of receive_ltc_database.json.
type PaymentsDoc struct {
	Payments map[string]*Payment `json:"payments"`
}

// ProductsDoc is the on-disk layout of products_database.json.
type ProductsDoc struct {
	Products map[string]*Product `json:"products"`
}
