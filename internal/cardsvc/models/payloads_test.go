package models_test

import (
	"encoding/json"
	"testing"

	"github.com/avvvet/bizcard-services/internal/cardsvc/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validRegister() models.RegisterInput {
	return models.RegisterInput{
		Name:     &models.NameInput{First: "John", Last: "Doe"},
		Phone:    "0501234567",
		Email:    "john@example.com",
		Password: "1234567",
		Address: &models.AddressInput{
			Country:     "Israel",
			City:        "Tel Aviv",
			Street:      "Dizengoff",
			HouseNumber: 100,
			Zip:         64332,
		},
	}
}

func strPtr(s string) *string { return &s }

func TestRegisterInputValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.RegisterInput)
		want   []string
	}{
		{
			name:   "valid",
			mutate: func(*models.RegisterInput) {},
		},
		{
			name:   "bad phone",
			mutate: func(r *models.RegisterInput) { r.Phone = "12345" },
			want:   []string{"phone: Please enter a valid Israeli phone number"},
		},
		{
			name:   "short password",
			mutate: func(r *models.RegisterInput) { r.Password = "123" },
			want:   []string{"password: the length must be between 7 and 20"},
		},
		{
			name:   "missing address",
			mutate: func(r *models.RegisterInput) { r.Address = nil },
			want:   []string{"address: cannot be blank"},
		},
		{
			name:   "nested name error",
			mutate: func(r *models.RegisterInput) { r.Name.First = "J" },
			want:   []string{"name.first: the length must be between 2 and 256"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegister()
			tt.mutate(&in)

			err := in.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, models.ValidationMessages(err))
		})
	}
}

func TestUserUpdateRequiresAField(t *testing.T) {
	err := models.UserUpdate{}.Validate()
	assert.ErrorIs(t, err, models.ErrEmptyUpdate)

	err = models.UserUpdate{Phone: strPtr("0521234567")}.Validate()
	assert.NoError(t, err)
}

func TestUserUpdateApplyTo(t *testing.T) {
	u := &models.User{
		Name:    models.Name{First: "John", Last: "Doe"},
		Email:   "john@example.com",
		Address: models.Address{City: "Haifa", Country: "Israel"},
	}
	city := "Eilat"

	models.UserUpdate{
		Name:    &models.NameUpdate{Last: strPtr("Smith")},
		Email:   strPtr(" John.Smith@Example.com "),
		Address: &models.AddressUpdate{City: &city},
	}.ApplyTo(u)

	assert.Equal(t, "John", u.Name.First)
	assert.Equal(t, "Smith", u.Name.Last)
	assert.Equal(t, "john.smith@example.com", u.Email)
	assert.Equal(t, "Eilat", u.Address.City)
	assert.Equal(t, "Israel", u.Address.Country)
}

func TestBizNumberInputValidate(t *testing.T) {
	assert.NoError(t, models.BizNumberInput{BizNumber: 123456789}.Validate())
	assert.Error(t, models.BizNumberInput{BizNumber: 12345}.Validate())
	assert.Error(t, models.BizNumberInput{BizNumber: 1234567890}.Validate())
	assert.Error(t, models.BizNumberInput{}.Validate())
}

func TestBusinessStatusInputValidate(t *testing.T) {
	f := false
	assert.NoError(t, models.BusinessStatusInput{IsBusiness: &f}.Validate())
	assert.Equal(t, []string{"isBusiness: isBusiness field is required"},
		models.ValidationMessages(models.BusinessStatusInput{}.Validate()))
}

func TestImageInputDefaults(t *testing.T) {
	var none *models.ImageInput
	img := none.Image(models.DefaultCardImageAlt)
	assert.Equal(t, models.DefaultImageURL, img.URL)
	assert.Equal(t, models.DefaultCardImageAlt, img.Alt)

	img = (&models.ImageInput{URL: "https://example.com/a.png"}).Image(models.DefaultUserImageAlt)
	assert.Equal(t, "https://example.com/a.png", img.URL)
	assert.Equal(t, models.DefaultUserImageAlt, img.Alt)
}

func TestCardJSONHasLikesCount(t *testing.T) {
	card := models.Card{Title: "Pizza", Likes: []primitive.ObjectID{primitive.NewObjectID()}}

	raw, err := json.Marshal(card)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, float64(1), out["likesCount"])
	assert.Equal(t, "Pizza", out["title"])

	raw, err = json.Marshal(models.Card{})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"likes":[]`)
	assert.Contains(t, string(raw), `"likesCount":0`)
}

func TestUserJSONHidesSecrets(t *testing.T) {
	raw, err := json.Marshal(models.User{PasswordHash: "secret-hash", Security: models.Security{FailedAttempts: 2}})
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "secret-hash")
	assert.NotContains(t, string(raw), "failedAttempts")
	assert.NotContains(t, string(raw), "password")
}
