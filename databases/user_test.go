package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chaman08/buildhub-sub001/databases"
	"github.com/chaman08/buildhub-sub001/databases/mocks"
	"github.com/chaman08/buildhub-sub001/models"
)

func TestUserDatabase_FindOne(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	db.On("Collection", "users").Return(coll)

	sr := &mocks.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.UserProfile)
		(*arg).ID = "acc1"
		(*arg).Name = "Meera"
	})
	coll.On("FindOne", mock.Anything, bson.M{"_id": "acc1"}).Return(sr)

	profile, err := databases.NewUserDatabase(db).FindOne(context.Background(), bson.M{"_id": "acc1"})

	assert.NoError(t, err)
	assert.Equal(t, "acc1", profile.ID)
	assert.Equal(t, "Meera", profile.Name)
}

func TestUserDatabase_FindOneError(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	db.On("Collection", "users").Return(coll)

	sr := &mocks.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	coll.On("FindOne", mock.Anything, mock.Anything).Return(sr)

	profile, err := databases.NewUserDatabase(db).FindOne(context.Background(), bson.M{"_id": "missing"})

	assert.Nil(t, profile)
	assert.Equal(t, mongo.ErrNoDocuments, err)
}

func TestUserDatabase_Find(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	db.On("Collection", "users").Return(coll)

	cursor := &mocks.CursorHelper{}
	cursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		out := args.Get(1).(*[]models.UserProfile)
		*out = []models.UserProfile{{ID: "acc1"}, {ID: "acc2"}}
	})
	cursor.On("Close", mock.Anything).Return(nil)
	coll.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)

	profiles, err := databases.NewUserDatabase(db).Find(context.Background(), bson.M{})

	assert.NoError(t, err)
	assert.Len(t, profiles, 2)
	cursor.AssertCalled(t, "Close", mock.Anything)
}

func TestUserDatabase_FindError(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	db.On("Collection", "users").Return(coll)

	coll.On("Find", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	profiles, err := databases.NewUserDatabase(db).Find(context.Background(), bson.M{})

	assert.Nil(t, profiles)
	assert.EqualError(t, err, "mocked-error")
}

func TestUserDatabase_FindPaginated(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	db.On("Collection", "users").Return(coll)

	cursor := &mocks.CursorHelper{}
	cursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		out := args.Get(1).(*[]models.UserProfile)
		*out = []models.UserProfile{{ID: "acc3"}}
	})
	cursor.On("Close", mock.Anything).Return(nil)

	// page 2 with limit 10 must skip the first 10 documents
	coll.On("Find", mock.Anything, mock.Anything, mock.MatchedBy(func(opts *options.FindOptions) bool {
		return opts.Limit != nil && *opts.Limit == 10 &&
			opts.Skip != nil && *opts.Skip == 10
	})).Return(cursor, nil)

	profiles, err := databases.NewUserDatabase(db).FindPaginated(context.Background(), bson.M{}, 10, 2)

	assert.NoError(t, err)
	assert.Len(t, profiles, 1)
	assert.Equal(t, "acc3", profiles[0].ID)
}

func TestUserDatabase_UpdateOne(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	db.On("Collection", "users").Return(coll)

	coll.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	res, err := databases.NewUserDatabase(db).UpdateOne(context.Background(),
		bson.M{"_id": "acc1"},
		bson.M{"$set": bson.M{"city": "Pune"}},
	)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)
}

func TestUserDatabase_CountDocuments(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	db.On("Collection", "users").Return(coll)

	coll.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(5), nil)

	count, err := databases.NewUserDatabase(db).CountDocuments(context.Background(), bson.M{})

	assert.NoError(t, err)
	assert.Equal(t, int64(5), count)
}
