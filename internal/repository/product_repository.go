package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type productRepository struct {
	db dbtx
}

func (r *productRepository) ListProducts(ctx context.Context) ([]domain.ProductListing, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.name, p.price_amount::text, p.price_currency, p.image, s.available
		 FROM products p
		 JOIN product_stock s ON s.product_id = p.id
		 ORDER BY p.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var listings []domain.ProductListing
	for rows.Next() {
		var (
			listing     domain.ProductListing
			priceAmount string
			priceCode   string
			image       *string
		)

		if err := rows.Scan(&listing.ID, &listing.Name, &priceAmount, &priceCode, &image, &listing.Available); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		listing.Price, err = parseMoney(priceAmount, priceCode)
		if err != nil {
			return nil, fmt.Errorf("parseMoney: %w", err)
		}
		if image != nil {
			listing.Image = *image
		}

		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return listings, nil
}

func (r *productRepository) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error) {
	products := make(map[uuid.UUID]domain.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, name, price_amount::text, price_currency, image
		 FROM products
		 WHERE id = ANY ($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			product     domain.Product
			priceAmount string
			priceCode   string
			image       *string
		)

		if err := rows.Scan(&product.ID, &product.Name, &priceAmount, &priceCode, &image); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		product.Price, err = parseMoney(priceAmount, priceCode)
		if err != nil {
			return nil, fmt.Errorf("parseMoney: %w", err)
		}
		if image != nil {
			product.Image = *image
		}

		products[product.ID] = product
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return products, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product domain.Product, stock int) error {
	if product.ID == uuid.Nil {
		return fmt.Errorf("product ID is empty")
	}
	if stock < 0 {
		return fmt.Errorf("stock[%d] is negative", stock)
	}

	var image *string
	if product.Image != "" {
		image = &product.Image
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO products (id, name, price_amount, price_currency, image)
		 VALUES ($1, $2, $3, $4, $5)`,
		product.ID, product.Name, product.Price.Amount, product.Price.Currency.String(), image,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO product_stock (product_id, available) VALUES ($1, $2)`,
		product.ID, stock,
	)
	if err != nil {
		return fmt.Errorf("insert product_stock: %w", err)
	}

	return nil
}

func parseMoney(amount, code string) (domain.Money, error) {
	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Money{}, fmt.Errorf("amount[%s] is not valid: %w", amount, err)
	}

	parsedCurrency, err := currency.ParseISO(code)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}

	return domain.Money{Amount: parsedAmount, Currency: parsedCurrency}, nil
}
