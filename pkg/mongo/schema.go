package mongo

import (
	"context"
	"errors"
	"slices"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/docstate/pkg/statemachine"
)

// codeNamespaceNotFound is returned by collMod for a missing collection.
const codeNamespaceNotFound = 26

// StateValidator builds the $jsonSchema validator restricting the state
// field to the machine's states and, when the mirror is in use, stateValue
// to the declared values.
func StateValidator(schema statemachine.Schema) bson.M {
	properties := bson.M{
		schema.State.Name: bson.M{
			"bsonType": "string",
			"enum":     schema.State.Enum,
		},
	}

	if sv := schema.StateValue; sv != nil {
		values := lo.Uniq(lo.Values(sv.Values))
		slices.Sort(values)
		properties[sv.Name] = bson.M{
			"bsonType": bson.A{"int", "long"},
			"enum":     values,
		}
	}

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   bson.A{schema.State.Name},
			"properties": properties,
		},
	}
}

// EnsureStateSchema installs StateValidator on the collection, creating the
// collection when it does not exist yet.
func EnsureStateSchema(ctx context.Context, db *mongo.Database, collection string, schema statemachine.Schema) error {
	validator := StateValidator(schema)

	err := db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: collection},
		{Key: "validator", Value: validator},
	}).Err()
	if err == nil {
		return nil
	}

	var serverErr mongo.ServerError
	if !errors.As(err, &serverErr) || !serverErr.HasErrorCode(codeNamespaceNotFound) {
		return errors.Join(ErrSchemaNotApplied, err)
	}

	if err := db.CreateCollection(ctx, collection, options.CreateCollection().SetValidator(validator)); err != nil {
		return errors.Join(ErrSchemaNotApplied, err)
	}
	return nil
}

// StateIndexes returns the index models for the state fields.
func StateIndexes(schema statemachine.Schema) []mongo.IndexModel {
	indexes := []mongo.IndexModel{{
		Keys:    bson.D{{Key: schema.State.Name, Value: 1}},
		Options: options.Index().SetName("idx_" + schema.State.Name),
	}}
	if sv := schema.StateValue; sv != nil {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: sv.Name, Value: 1}},
			Options: options.Index().SetName("idx_" + sv.Name),
		})
	}
	return indexes
}

// EnsureStateIndexes creates the StateIndexes on coll.
func EnsureStateIndexes(ctx context.Context, coll *mongo.Collection, schema statemachine.Schema) error {
	if _, err := coll.Indexes().CreateMany(ctx, StateIndexes(schema)); err != nil {
		return errors.Join(ErrSchemaNotApplied, err)
	}
	return nil
}
