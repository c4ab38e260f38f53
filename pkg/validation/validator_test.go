package validation

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type registerPayload struct {
	Name     string `json:"name" validate:"max=5"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
}

type idPayload struct {
	ID string `json:"_id" validate:"required,objectid"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestToDetailsUsesJSONNames(t *testing.T) {
	err := newValidator().Struct(registerPayload{Name: "toolong", Email: "nope", Password: "123"})
	details := ToDetails(err)

	assert.Equal(t, "must be at most 5 characters", details["name"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 6 characters", details["password"])
}

func TestObjectIDTag(t *testing.T) {
	v := newValidator()
	assert.NoError(t, v.Struct(idPayload{ID: primitive.NewObjectID().Hex()}))

	details := ToDetails(v.Struct(idPayload{ID: "123"}))
	assert.Equal(t, "must be a valid id", details["_id"])

	details = ToDetails(v.Struct(idPayload{}))
	assert.Equal(t, "is required", details["_id"])
}

func TestToDetailsJSONErrors(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte("{bad"), &dst)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}
