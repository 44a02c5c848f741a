// Package mongo provides MongoDB implementations of the read-side projections.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/transactionprocessing/transaction-processor/internal/domain/estate"
)

const (
	// BalanceCollectionName is the name of the merchant balance collection in MongoDB
	BalanceCollectionName = "merchant_balances"
)

// balanceDocument is the stored shape of a merchant balance. The balance is
// kept as a string so no precision is lost between writer and reader.
type balanceDocument struct {
	MerchantID  uuid.UUID `bson:"merchant_id"`
	Balance     string    `bson:"balance"`
	LastUpdated time.Time `bson:"last_updated"`
}

// BalanceRepository implements the estate.BalanceProjection interface for MongoDB
type BalanceRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewBalanceRepository creates a new MongoDB merchant balance repository
func NewBalanceRepository(logger *slog.Logger, db *mongo.Database) estate.BalanceProjection {
	return &BalanceRepository{
		db:     db,
		logger: logger,
	}
}

// GetMerchantBalance reads the materialized balance for a merchant. A merchant
// with no balance document yet has a zero balance, not an error.
func (r *BalanceRepository) GetMerchantBalance(ctx context.Context, merchantID uuid.UUID) (*estate.BalanceSnapshot, error) {
	collection := r.db.Collection(BalanceCollectionName)

	filter := bson.M{"merchant_id": merchantID}
	var doc balanceDocument
	err := collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &estate.BalanceSnapshot{MerchantID: merchantID, Balance: decimal.Zero}, nil
		}
		r.logger.Error("Failed to get merchant balance",
			"merchant_id", merchantID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get merchant balance: %w", err)
	}

	balance, err := decimal.NewFromString(doc.Balance)
	if err != nil {
		r.logger.Error("Merchant balance document holds an invalid amount",
			"merchant_id", merchantID.String(),
			"balance", doc.Balance,
			"error", err)
		return nil, fmt.Errorf("invalid merchant balance for %s: %w", merchantID, err)
	}

	return &estate.BalanceSnapshot{MerchantID: merchantID, Balance: balance}, nil
}

// RecordMerchantBalance upserts the materialized balance for a merchant. It is
// used by operational tooling and by tests seeding the projection.
func (r *BalanceRepository) RecordMerchantBalance(ctx context.Context, merchantID uuid.UUID, balance decimal.Decimal) error {
	collection := r.db.Collection(BalanceCollectionName)

	filter := bson.M{"merchant_id": merchantID}
	update := bson.M{"$set": balanceDocument{
		MerchantID:  merchantID,
		Balance:     balance.String(),
		LastUpdated: time.Now().UTC(),
	}}

	_, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to record merchant balance",
			"merchant_id", merchantID.String(),
			"error", err)
		return fmt.Errorf("failed to record merchant balance: %w", err)
	}

	return nil
}
