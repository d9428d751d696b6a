// Package mongo stores state machine documents in MongoDB.
//
// It provides environment-driven connection management with retries, a
// health check, and Store, a statemachine.Store that keeps one document per
// _id. EnsureStateSchema and EnsureStateIndexes derive a $jsonSchema
// validator and indexes from statemachine.Schema so the database rejects
// unknown states.
//
// # Usage
//
//	type Article struct {
//		ID    string `bson:"_id"`
//		Title string `bson:"title"`
//		statemachine.Fields `bson:",inline"`
//	}
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	coll := db.Collection("articles")
//	store := mongo.NewStore[Article](coll)
//
//	m := statemachine.MustNew(store, states, transitions)
//	if err := mongo.EnsureStateSchema(ctx, db, "articles", m.Schema()); err != nil {
//		return err
//	}
//	if err := mongo.EnsureStateIndexes(ctx, coll, m.Schema()); err != nil {
//		return err
//	}
//
// FindByID reports statemachine.ErrNotFound for a missing document; other
// driver errors are wrapped and returned as is.
package mongo
