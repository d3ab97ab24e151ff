package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("mongo.connect_failed")
	ErrHealthcheckFailed      = errors.New("mongo.healthcheck_failed")
	ErrFailedToCreateIndex    = errors.New("mongo.create_index_failed")
)
