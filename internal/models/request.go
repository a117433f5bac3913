package models

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type PurchaseRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
	NFTID  int64 `json:"nftId" validate:"required,gt=0"`

	// IdempotencyKey is taken from the Idempotency-Key header, never from the body.
	IdempotencyKey string `json:"-"`
}

func (r *PurchaseRequest) Validate() error {
	return validate.Struct(r)
}

type CreateNFTRequest struct {
	Emoji       string           `json:"emoji" validate:"required,max=16"`
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description" validate:"max=2000"`
	Price       *decimal.Decimal `json:"price"`
	Rarity      Rarity           `json:"rarity" validate:"required,oneof=common rare epic legendary"`
	Gradient    string           `json:"gradient" validate:"max=255"`
}

// Normalize trims the text fields and fills in the default gradient.
func (r *CreateNFTRequest) Normalize() {
	r.Emoji = strings.TrimSpace(r.Emoji)
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Gradient = strings.TrimSpace(r.Gradient)
	if r.Gradient == "" {
		r.Gradient = DefaultGradient
	}
}

func (r *CreateNFTRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.Price == nil {
		return errPriceRequired
	}
	if r.Price.IsNegative() {
		return errPriceNegative
	}
	return nil
}

// NFT converts a validated request into the row to insert.
func (r *CreateNFTRequest) NFT() *NFT {
	return &NFT{
		Emoji:       r.Emoji,
		Name:        r.Name,
		Description: r.Description,
		Price:       *r.Price,
		Rarity:      r.Rarity,
		Gradient:    r.Gradient,
	}
}

type fieldError string

func (e fieldError) Error() string { return string(e) }

const (
	errPriceRequired fieldError = "price is required"
	errPriceNegative fieldError = "price must not be negative"
)

// DescribeValidation turns validator output into a short client message.
func DescribeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeField(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "gt":
		return name + " must be greater than " + fe.Param()
	case "max":
		return name + " must be at most " + fe.Param() + " characters"
	case "oneof":
		return name + " must be one of: " + fe.Param()
	default:
		return name + " is invalid"
	}
}
