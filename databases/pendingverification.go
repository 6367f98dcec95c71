package databases

// go generate: mockery --name PendingVerificationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chaman08/buildhub-sub001/models"
)

const pendingVerificationName = "pendingVerifications"

// PendingVerificationDatabase contains the methods to use with the pendingVerifications database
type PendingVerificationDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.PendingVerification, error)
	InsertOne(ctx context.Context, pending models.PendingVerification, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type pendingVerificationDatabase struct {
	db DatabaseHelper
}

// NewPendingVerificationDatabase initializes a new instance of pending verification database with the provided db connection
func NewPendingVerificationDatabase(db DatabaseHelper) PendingVerificationDatabase {
	return &pendingVerificationDatabase{
		db: db,
	}
}

func (p *pendingVerificationDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.PendingVerification, error) {
	pending := &models.PendingVerification{}
	err := p.db.Collection(pendingVerificationName).FindOne(ctx, filter, opts...).Decode(&pending)
	if err != nil {
		return nil, err
	}
	return pending, nil
}

func (p *pendingVerificationDatabase) InsertOne(ctx context.Context, pending models.PendingVerification, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return p.db.Collection(pendingVerificationName).InsertOne(ctx, pending, opts...)
}

func (p *pendingVerificationDatabase) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return p.db.Collection(pendingVerificationName).DeleteMany(ctx, filter, opts...)
}
