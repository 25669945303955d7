// Package store persists search records in DynamoDB.
package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/pricofy/crypto-price-api/internal/apperr"
	"github.com/pricofy/crypto-price-api/internal/domain"
)

// PutAPI is the write side of the DynamoDB client.
type PutAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// API is the subset of the DynamoDB client used by Dynamo.
type API interface {
	PutAPI
	dynamodb.ScanAPIClient
}

// Dynamo reads and writes search records in a single table keyed by searchId.
type Dynamo struct {
	api    API
	table  string
	logger zerolog.Logger
}

// NewDynamo creates a store for table.
func NewDynamo(api API, table string, logger zerolog.Logger) *Dynamo {
	return &Dynamo{
		api:    api,
		table:  table,
		logger: logger.With().Str("component", "store").Str("table", table).Logger(),
	}
}

// PutRecord writes rec. The write is conditional on the searchId being new,
// so a record is never overwritten.
func (d *Dynamo) PutRecord(ctx context.Context, rec domain.SearchRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return apperr.New(apperr.ErrPersistenceWriteFailed, err, "failed to store search history")
	}

	_, err = d.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(searchId)"),
	})
	if err != nil {
		d.logger.Error().Err(err).Str("search_id", rec.SearchID).Msg("put item failed")
		return apperr.New(apperr.ErrPersistenceWriteFailed, err, "failed to store search history")
	}

	d.logger.Info().Str("search_id", rec.SearchID).Msg("stored search")
	return nil
}

// ScanByEmail returns every record addressed to email, following scan
// pagination until the table is exhausted. Records are returned in the
// order the pages were read. On error nothing is returned.
func (d *Dynamo) ScanByEmail(ctx context.Context, email string) ([]domain.SearchRecord, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(d.table),
		FilterExpression: aws.String("recipientEmail = :emailVal"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":emailVal": &types.AttributeValueMemberS{Value: email},
		},
	}

	records := make([]domain.SearchRecord, 0)
	pages := 0
	p := dynamodb.NewScanPaginator(d.api, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			d.logger.Error().Err(err).Str("recipient", email).Int("page", pages+1).Msg("scan failed")
			return nil, apperr.New(apperr.ErrPersistenceReadFailed, err, "failed to retrieve search history")
		}

		var page []domain.SearchRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, apperr.New(apperr.ErrPersistenceReadFailed, fmt.Errorf("decode page %d: %w", pages+1, err), "failed to retrieve search history")
		}
		records = append(records, page...)
		pages++
	}

	d.logger.Info().Str("recipient", email).Int("pages", pages).Int("items", len(records)).Msg("scan complete")
	return records, nil
}
