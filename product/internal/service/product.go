package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	inErrors "github.com/khalidaziz/dukkan/internal/errors"
	"github.com/khalidaziz/dukkan/internal/log"
	inOtel "github.com/khalidaziz/dukkan/internal/otel"
	"github.com/khalidaziz/dukkan/internal/repository"
	"github.com/khalidaziz/dukkan/product/internal/otel"
	"github.com/khalidaziz/dukkan/product/pkg/request"
	"github.com/khalidaziz/dukkan/product/pkg/response"
)

type ProductService struct {
	queries *repository.Queries
}

func NewProductService(queries *repository.Queries) *ProductService {
	return &ProductService{queries: queries}
}

func (s *ProductService) InsertProduct(
	c context.Context,
	param request.InsertProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService InsertProduct").
		Str(log.KeyProcess, "inserting product").
		Logger()

	logger.Info().Msg("inserting product")
	product, err := s.queries.InsertProduct(c, repository.InsertProductParams{
		Name:        param.Name,
		Description: param.Description,
		Price:       repository.NumericFromDecimal(param.Price),
		ImageUrl:    param.ImageUrl,
		Quantity:    param.Quantity,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Str(log.KeyProductID, product.ID.String()).Msg("inserted product")

	return product.Response(), nil
}

func (s *ProductService) UpdateProduct(
	c context.Context,
	productId uuid.UUID,
	param request.UpdateProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService UpdateProduct").
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger.Info().Msg("updating product")
	product, err := s.queries.UpdateProduct(c, repository.UpdateProductParams{
		ID:          productId,
		Name:        param.Name,
		Description: param.Description,
		Price:       repository.NumericFromDecimal(param.Price),
		ImageUrl:    param.ImageUrl,
		Quantity:    param.Quantity,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = inErrors.ErrProductNotFound
		}
		err = fmt.Errorf("failed updating product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("updated product")

	return product.Response(), nil
}

func (s *ProductService) DeleteProduct(c context.Context, productId uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "ProductService DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService DeleteProduct").
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger.Info().Msg("deleting product")
	if err := s.queries.DeleteProduct(c, productId); err != nil {
		err = fmt.Errorf("failed deleting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted product")

	return nil
}

func (s *ProductService) FindProducts(c context.Context) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProducts").
		Logger()

	logger.Info().Msg("finding products")
	products, err := s.queries.FindProducts(c)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("found products count=%d", len(products))

	res := make([]response.Product, 0, len(products))
	for _, product := range products {
		res = append(res, product.Response())
	}
	return res, nil
}

func (s *ProductService) FindProductById(
	c context.Context,
	productId uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger.Info().Msg("finding product by id")
	product, err := s.queries.FindProductById(c, productId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = inErrors.ErrProductNotFound
		}
		err = fmt.Errorf("failed finding product by id=%s with error=%w", productId, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("found product by id")

	return product.Response(), nil
}
