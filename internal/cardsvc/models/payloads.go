package models

import (
	"errors"
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var phoneRe = regexp.MustCompile(`^0[2-9]\d{7,8}$`)

var (
	phoneRule     = validation.Match(phoneRe).Error("Please enter a valid Israeli phone number")
	emailRule     = is.Email.Error("Please enter a valid email address")
	urlRule       = is.URL.Error("Please enter a valid URL")
	shortTextRule = validation.Length(2, 256)
	zipRules      = []validation.Rule{validation.Min(10000), validation.Max(999999999)}
)

// ErrEmptyUpdate is returned by update payloads carrying no field at all.
var ErrEmptyUpdate = errors.New("at least one field must be provided for update")

type NameInput struct {
	First  string `json:"first"`
	Middle string `json:"middle"`
	Last   string `json:"last"`
}

func (n NameInput) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.First, validation.Required, shortTextRule),
		validation.Field(&n.Middle, validation.Length(0, 256)),
		validation.Field(&n.Last, validation.Required, shortTextRule),
	)
}

type ImageInput struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

func (i ImageInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.URL, urlRule),
		validation.Field(&i.Alt, validation.Length(0, 256)),
	)
}

// Image returns the stored image, falling back to defaults for blank parts.
func (i *ImageInput) Image(defaultAlt string) Image {
	img := Image{URL: DefaultImageURL, Alt: defaultAlt}
	if i == nil {
		return img
	}
	if i.URL != "" {
		img.URL = i.URL
	}
	if i.Alt != "" {
		img.Alt = i.Alt
	}
	return img
}

type AddressInput struct {
	State       string `json:"state"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Street      string `json:"street"`
	HouseNumber int    `json:"houseNumber"`
	Zip         int    `json:"zip"`
}

func (a AddressInput) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.State, validation.Length(0, 256)),
		validation.Field(&a.Country, validation.Required, shortTextRule),
		validation.Field(&a.City, validation.Required, shortTextRule),
		validation.Field(&a.Street, validation.Required, shortTextRule),
		validation.Field(&a.HouseNumber, validation.Required, validation.Min(1)),
		validation.Field(&a.Zip, zipRules...),
	)
}

func (a AddressInput) Address() Address {
	return Address(a)
}

type RegisterInput struct {
	Name       *NameInput    `json:"name"`
	Phone      string        `json:"phone"`
	Email      string        `json:"email"`
	Password   string        `json:"password"`
	Image      *ImageInput   `json:"image"`
	Address    *AddressInput `json:"address"`
	IsBusiness bool          `json:"isBusiness"`
}

func (r RegisterInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Phone, validation.Required, phoneRule),
		validation.Field(&r.Email, validation.Required, emailRule),
		validation.Field(&r.Password, validation.Required, validation.Length(7, 20)),
		validation.Field(&r.Image),
		validation.Field(&r.Address, validation.Required),
	)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (l LoginInput) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Email, validation.Required, emailRule),
		validation.Field(&l.Password, validation.Required),
	)
}

type NameUpdate struct {
	First  *string `json:"first"`
	Middle *string `json:"middle"`
	Last   *string `json:"last"`
}

func (n NameUpdate) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.First, validation.NilOrNotEmpty, shortTextRule),
		validation.Field(&n.Middle, validation.Length(0, 256)),
		validation.Field(&n.Last, validation.NilOrNotEmpty, shortTextRule),
	)
}

type ImageUpdate struct {
	URL *string `json:"url"`
	Alt *string `json:"alt"`
}

func (i ImageUpdate) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.URL, urlRule),
		validation.Field(&i.Alt, validation.Length(0, 256)),
	)
}

type AddressUpdate struct {
	State       *string `json:"state"`
	Country     *string `json:"country"`
	City        *string `json:"city"`
	Street      *string `json:"street"`
	HouseNumber *int    `json:"houseNumber"`
	Zip         *int    `json:"zip"`
}

func (a AddressUpdate) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.State, validation.Length(0, 256)),
		validation.Field(&a.Country, validation.NilOrNotEmpty, shortTextRule),
		validation.Field(&a.City, validation.NilOrNotEmpty, shortTextRule),
		validation.Field(&a.Street, validation.NilOrNotEmpty, shortTextRule),
		validation.Field(&a.HouseNumber, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&a.Zip, zipRules...),
	)
}

// UserUpdate is the allow-list of profile fields a user may change.
type UserUpdate struct {
	Name    *NameUpdate    `json:"name"`
	Phone   *string        `json:"phone"`
	Email   *string        `json:"email"`
	Image   *ImageUpdate   `json:"image"`
	Address *AddressUpdate `json:"address"`
}

func (u UserUpdate) Validate() error {
	if u.Name == nil && u.Phone == nil && u.Email == nil && u.Image == nil && u.Address == nil {
		return ErrEmptyUpdate
	}
	return validation.ValidateStruct(&u,
		validation.Field(&u.Name),
		validation.Field(&u.Phone, validation.NilOrNotEmpty, phoneRule),
		validation.Field(&u.Email, validation.NilOrNotEmpty, emailRule),
		validation.Field(&u.Image),
		validation.Field(&u.Address),
	)
}

// ApplyTo merges the update into user.
func (u UserUpdate) ApplyTo(user *User) {
	if n := u.Name; n != nil {
		setString(&user.Name.First, n.First)
		setString(&user.Name.Middle, n.Middle)
		setString(&user.Name.Last, n.Last)
	}
	setString(&user.Phone, u.Phone)
	if u.Email != nil {
		user.Email = NormalizeEmail(*u.Email)
	}
	u.Image.applyTo(&user.Image)
	u.Address.applyTo(&user.Address)
}

type BusinessStatusInput struct {
	IsBusiness *bool `json:"isBusiness"`
}

func (b BusinessStatusInput) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.IsBusiness, validation.NotNil.Error("isBusiness field is required")),
	)
}

type CardInput struct {
	Title       string        `json:"title"`
	Subtitle    string        `json:"subtitle"`
	Description string        `json:"description"`
	Phone       string        `json:"phone"`
	Email       string        `json:"email"`
	Web         string        `json:"web"`
	Image       *ImageInput   `json:"image"`
	Address     *AddressInput `json:"address"`
}

func (c CardInput) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required, shortTextRule),
		validation.Field(&c.Subtitle, validation.Required, shortTextRule),
		validation.Field(&c.Description, validation.Required, validation.Length(2, 1024)),
		validation.Field(&c.Phone, validation.Required, phoneRule),
		validation.Field(&c.Email, validation.Required, emailRule),
		validation.Field(&c.Web, urlRule),
		validation.Field(&c.Image),
		validation.Field(&c.Address, validation.Required),
	)
}

// CardUpdate is the allow-list of card fields an owner may change.
type CardUpdate struct {
	Title       *string        `json:"title"`
	Subtitle    *string        `json:"subtitle"`
	Description *string        `json:"description"`
	Phone       *string        `json:"phone"`
	Email       *string        `json:"email"`
	Web         *string        `json:"web"`
	Image       *ImageUpdate   `json:"image"`
	Address     *AddressUpdate `json:"address"`
}

func (c CardUpdate) Validate() error {
	if c.Title == nil && c.Subtitle == nil && c.Description == nil && c.Phone == nil &&
		c.Email == nil && c.Web == nil && c.Image == nil && c.Address == nil {
		return ErrEmptyUpdate
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.NilOrNotEmpty, shortTextRule),
		validation.Field(&c.Subtitle, validation.NilOrNotEmpty, shortTextRule),
		validation.Field(&c.Description, validation.NilOrNotEmpty, validation.Length(2, 1024)),
		validation.Field(&c.Phone, validation.NilOrNotEmpty, phoneRule),
		validation.Field(&c.Email, validation.NilOrNotEmpty, emailRule),
		validation.Field(&c.Web, urlRule),
		validation.Field(&c.Image),
		validation.Field(&c.Address),
	)
}

func (c CardUpdate) ApplyTo(card *Card) {
	setString(&card.Title, c.Title)
	setString(&card.Subtitle, c.Subtitle)
	setString(&card.Description, c.Description)
	setString(&card.Phone, c.Phone)
	setString(&card.Email, c.Email)
	setString(&card.Web, c.Web)
	c.Image.applyTo(&card.Image)
	c.Address.applyTo(&card.Address)
}

type BizNumberInput struct {
	BizNumber int64 `json:"bizNumber"`
}

func (b BizNumberInput) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.BizNumber,
			validation.Required.Error("Business number is required"),
			validation.Min(MinBizNumber).Error("Business number must be 9 digits"),
			validation.Max(MaxBizNumber).Error("Business number must be 9 digits"),
		),
	)
}

func (i *ImageUpdate) applyTo(img *Image) {
	if i == nil {
		return
	}
	setString(&img.URL, i.URL)
	setString(&img.Alt, i.Alt)
}

func (a *AddressUpdate) applyTo(addr *Address) {
	if a == nil {
		return
	}
	setString(&addr.State, a.State)
	setString(&addr.Country, a.Country)
	setString(&addr.City, a.City)
	setString(&addr.Street, a.Street)
	setInt(&addr.HouseNumber, a.HouseNumber)
	setInt(&addr.Zip, a.Zip)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// ValidationMessages flattens ozzo validation errors into "path: message"
// lines, sorted for stable output.
func ValidationMessages(err error) []string {
	var out []string
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return []string{err.Error()}
	}
	collectMessages("", errs, &out)
	sort.Strings(out)
	return out
}

func collectMessages(prefix string, errs validation.Errors, out *[]string) {
	for field, err := range errs {
		path := field
		if prefix != "" {
			path = prefix + "." + field
		}
		var nested validation.Errors
		if errors.As(err, &nested) {
			collectMessages(path, nested, out)
			continue
		}
		*out = append(*out, path+": "+err.Error())
	}
}
