package databases

// go generate: mockery --name AccountDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chaman08/buildhub-sub001/models"
)

const accountName = "accounts"

// AccountDatabase contains the methods to use with the accounts database
type AccountDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Account, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, account models.Account, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type accountDatabase struct {
	db DatabaseHelper
}

// NewAccountDatabase initializes a new instance of account database with the provided db connection
func NewAccountDatabase(db DatabaseHelper) AccountDatabase {
	return &accountDatabase{
		db: db,
	}
}

func (a *accountDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Account, error) {
	account := &models.Account{}
	err := a.db.Collection(accountName).FindOne(ctx, filter, opts...).Decode(&account)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (a *accountDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return a.db.Collection(accountName).CountDocuments(ctx, filter, opts...)
}

func (a *accountDatabase) InsertOne(ctx context.Context, account models.Account, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return a.db.Collection(accountName).InsertOne(ctx, account, opts...)
}

func (a *accountDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return a.db.Collection(accountName).UpdateOne(ctx, filter, update, opts...)
}
