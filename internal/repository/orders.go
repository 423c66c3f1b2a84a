package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertOrder = `
INSERT INTO orders (
	id, payment_intent_id, user_id,
	first_name, last_name, email, phone,
	address, city, region, postal_code, country,
	subtotal, shipping_fee, tax, total, total_items, status
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
ON CONFLICT (id) DO NOTHING
RETURNING id, payment_intent_id, user_id,
	first_name, last_name, email, phone,
	address, city, region, postal_code, country,
	subtotal, shipping_fee, tax, total, total_items, status,
	created_at, updated_at
`

type InsertOrderParams struct {
	ID              string
	PaymentIntentID string
	UserID          uuid.UUID
	FirstName       string
	LastName        string
	Email           string
	Phone           pgtype.Text
	Address         string
	City            string
	Region          string
	PostalCode      string
	Country         string
	Subtotal        pgtype.Numeric
	ShippingFee     pgtype.Numeric
	Tax             pgtype.Numeric
	Total           pgtype.Numeric
	TotalItems      int32
	Status          OrderStatus
}

// InsertOrder returns pgx.ErrNoRows when an order with the same id already
// exists; callers treat that as an idempotent replay, not a failure.
func (q *Queries) InsertOrder(c context.Context, arg InsertOrderParams) (Order, error) {
	row := q.db.QueryRow(c, insertOrder,
		arg.ID,
		arg.PaymentIntentID,
		arg.UserID,
		arg.FirstName,
		arg.LastName,
		arg.Email,
		arg.Phone,
		arg.Address,
		arg.City,
		arg.Region,
		arg.PostalCode,
		arg.Country,
		arg.Subtotal,
		arg.ShippingFee,
		arg.Tax,
		arg.Total,
		arg.TotalItems,
		arg.Status,
	)
	return scanOrder(row)
}

type InsertOrderItemParams struct {
	OrderID   string
	ProductID uuid.UUID
	Quantity  int32
	Price     pgtype.Numeric
}

func (q *Queries) InsertOrderItems(c context.Context, arg []InsertOrderItemParams) (int64, error) {
	return q.db.CopyFrom(
		c,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "product_id", "quantity", "price"},
		pgx.CopyFromSlice(len(arg), func(i int) ([]interface{}, error) {
			return []interface{}{
				arg[i].OrderID,
				arg[i].ProductID,
				arg[i].Quantity,
				arg[i].Price,
			}, nil
		}),
	)
}

const findOrderById = `
SELECT id, payment_intent_id, user_id,
	first_name, last_name, email, phone,
	address, city, region, postal_code, country,
	subtotal, shipping_fee, tax, total, total_items, status,
	created_at, updated_at
FROM orders
WHERE id = $1
`

func (q *Queries) FindOrderById(c context.Context, id string) (Order, error) {
	return scanOrder(q.db.QueryRow(c, findOrderById, id))
}

const findOrderByPaymentIntentId = `
SELECT id, payment_intent_id, user_id,
	first_name, last_name, email, phone,
	address, city, region, postal_code, country,
	subtotal, shipping_fee, tax, total, total_items, status,
	created_at, updated_at
FROM orders
WHERE payment_intent_id = $1
`

func (q *Queries) FindOrderByPaymentIntentId(c context.Context, intentId string) (Order, error) {
	return scanOrder(q.db.QueryRow(c, findOrderByPaymentIntentId, intentId))
}

const findOrdersByUserId = `
SELECT id, payment_intent_id, user_id,
	first_name, last_name, email, phone,
	address, city, region, postal_code, country,
	subtotal, shipping_fee, tax, total, total_items, status,
	created_at, updated_at
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`

func (q *Queries) FindOrdersByUserId(c context.Context, userId uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(c, findOrdersByUserId, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const findOrderItemsByOrderId = `
SELECT id, order_id, product_id, quantity, price
FROM order_items
WHERE order_id = $1
ORDER BY id
`

func (q *Queries) FindOrderItemsByOrderId(c context.Context, orderId string) ([]OrderItem, error) {
	rows, err := q.db.Query(c, findOrderItemsByOrderId, orderId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.Quantity,
			&i.Price,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const countOrders = `
SELECT count(*) FROM orders WHERE id = $1
`

func (q *Queries) CountOrdersById(c context.Context, id string) (int64, error) {
	var count int64
	err := q.db.QueryRow(c, countOrders, id).Scan(&count)
	return count, err
}

func scanOrder(row pgx.Row) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.PaymentIntentID,
		&i.UserID,
		&i.FirstName,
		&i.LastName,
		&i.Email,
		&i.Phone,
		&i.Address,
		&i.City,
		&i.Region,
		&i.PostalCode,
		&i.Country,
		&i.Subtotal,
		&i.ShippingFee,
		&i.Tax,
		&i.Total,
		&i.TotalItems,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
