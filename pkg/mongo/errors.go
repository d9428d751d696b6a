package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed      = errors.New("mongo healthcheck failed")
	ErrEmptyDocumentID        = errors.New("document id cannot be empty")
	ErrSchemaNotApplied       = errors.New("failed to apply state schema")
)
