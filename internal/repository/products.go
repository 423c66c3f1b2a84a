package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertProduct = `
INSERT INTO products (name, description, price, image_url, quantity)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, description, price, image_url, quantity, created_at, updated_at
`

type InsertProductParams struct {
	Name        string
	Description string
	Price       pgtype.Numeric
	ImageUrl    string
	Quantity    int32
}

func (q *Queries) InsertProduct(c context.Context, arg InsertProductParams) (Product, error) {
	row := q.db.QueryRow(c, insertProduct,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
		arg.Quantity,
	)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.Quantity,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateProduct = `
UPDATE products
SET name = $2, description = $3, price = $4, image_url = $5, quantity = $6, updated_at = now()
WHERE id = $1
RETURNING id, name, description, price, image_url, quantity, created_at, updated_at
`

type UpdateProductParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       pgtype.Numeric
	ImageUrl    string
	Quantity    int32
}

func (q *Queries) UpdateProduct(c context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(c, updateProduct,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
		arg.Quantity,
	)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.Quantity,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteProduct = `
DELETE FROM products WHERE id = $1
`

func (q *Queries) DeleteProduct(c context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(c, deleteProduct, id)
	return err
}

const findProducts = `
SELECT id, name, description, price, image_url, quantity, created_at, updated_at
FROM products
ORDER BY created_at DESC
`

func (q *Queries) FindProducts(c context.Context) ([]Product, error) {
	rows, err := q.db.Query(c, findProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Price,
			&i.ImageUrl,
			&i.Quantity,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const findProductById = `
SELECT id, name, description, price, image_url, quantity, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) FindProductById(c context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(c, findProductById, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.Quantity,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findProductsByIds = `
SELECT id, name, description, price, image_url, quantity, created_at, updated_at
FROM products
WHERE id = ANY($1::uuid[])
`

func (q *Queries) FindProductsByIds(c context.Context, ids []uuid.UUID) ([]Product, error) {
	rows, err := q.db.Query(c, findProductsByIds, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Price,
			&i.ImageUrl,
			&i.Quantity,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
