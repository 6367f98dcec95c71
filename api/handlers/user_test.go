package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chaman08/buildhub-sub001/api/handlers"
	"github.com/chaman08/buildhub-sub001/databases"
	mocksdb "github.com/chaman08/buildhub-sub001/databases/mocks"
	"github.com/chaman08/buildhub-sub001/models"
)

func newUserHandler() (handlers.User, *mocksdb.CollectionHelper) {
	db := &mocksdb.DatabaseHelper{}
	usersColl := &mocksdb.CollectionHelper{}
	db.On("Collection", "users").Return(usersColl)
	return handlers.User{DB: databases.NewUserDatabase(db)}, usersColl
}

func TestUser_UserHandler(t *testing.T) {
	u, usersColl := newUserHandler()

	sr := &mocksdb.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.UserProfile)
		(*arg).ID = "meera"
		(*arg).Name = "Meera"
		(*arg).Role = models.RoleCustomer
	})
	usersColl.On("FindOne", mock.Anything, bson.M{"_id": "meera"}).Return(sr)

	req, err := http.NewRequest("GET", "/api/v1/user/meera", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "meera"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var profile models.UserProfile
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	assert.Equal(t, "Meera", profile.Name)
}

func TestUser_UserHandlerNotFound(t *testing.T) {
	u, usersColl := newUserHandler()

	sr := &mocksdb.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	usersColl.On("FindOne", mock.Anything, mock.Anything).Return(sr)

	req, err := http.NewRequest("GET", "/api/v1/user/ghost", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "ghost"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUser_UpdateUserByIDHandlerRejectsOtherOwner(t *testing.T) {
	u, usersColl := newUserHandler()

	body := `{"city": "Delhi"}`
	req, err := http.NewRequest("PUT", "/api/v1/user/rajan", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "rajan"})
	req = withPrincipal(req, "meera", "meera@example.com")

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UpdateUserByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	usersColl.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestUser_UpdateUserByIDHandlerIgnoresProtectedFields(t *testing.T) {
	u, usersColl := newUserHandler()

	usersColl.On("UpdateOne", mock.Anything, mock.Anything, mock.MatchedBy(func(update interface{}) bool {
		m, ok := update.(bson.M)
		if !ok {
			return false
		}
		set, ok := m["$set"].(bson.M)
		if !ok {
			return false
		}
		// the write may only carry the editable field plus the touch timestamp
		_, hasCity := set["city"]
		_, hasAdmin := set["isAdmin"]
		_, hasVerified := set["isEmailVerified"]
		return hasCity && !hasAdmin && !hasVerified
	})).Return(&mongo.UpdateResult{ModifiedCount: 1}, nil)

	sr := &mocksdb.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.UserProfile)
		(*arg).ID = "meera"
		(*arg).City = "Delhi"
	})
	usersColl.On("FindOne", mock.Anything, mock.Anything).Return(sr)

	// isAdmin and isEmailVerified are not client-editable
	body := `{"city": "Delhi", "isAdmin": true, "isEmailVerified": true}`
	req, err := http.NewRequest("PUT", "/api/v1/user/meera", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "meera"})
	req = withPrincipal(req, "meera", "meera@example.com")

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UpdateUserByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	usersColl.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestUser_UpdateUserByIDHandlerEmptyUpdate(t *testing.T) {
	u, usersColl := newUserHandler()

	body := `{"isAdmin": true}`
	req, err := http.NewRequest("PUT", "/api/v1/user/meera", bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "meera"})
	req = withPrincipal(req, "meera", "meera@example.com")

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UpdateUserByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	usersColl.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestUser_ProfileCompletionHandler(t *testing.T) {
	u, usersColl := newUserHandler()

	sr := &mocksdb.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.UserProfile)
		(*arg).ID = "rajan"
		(*arg).Email = "rajan@example.com"
		(*arg).Name = "Rajan"
		(*arg).Role = models.RoleContractor
		(*arg).Phone = "+91 97x"
		(*arg).City = "Mumbai"
	})
	usersColl.On("FindOne", mock.Anything, mock.Anything).Return(sr)

	req, err := http.NewRequest("GET", "/api/v1/user/rajan/completion", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "rajan"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.ProfileCompletionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var completion models.ProfileCompletion
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &completion))
	assert.False(t, completion.Complete)
	assert.ElementsMatch(t, []string{"companyName", "serviceCategory"}, completion.MissingFields)
}
