package service

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/go-playground/validator/v10"
)

// ValidationError первое нарушенное правило входных данных
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Сообщения по ключу "<тип>.<поле>.<правило>"
var validationMessages = map[string]string{
	"CategoryInput.name.required":         "カテゴリ名は必須です",
	"CategoryInput.name.max":              "カテゴリ名は50文字以内で入力してください",
	"CategoryInput.sort_order.min":        "並び順は0以上で入力してください",
	"StateInput.name.required":            "名前は必須です",
	"StateInput.name.max":                 "名前は50文字以内で入力してください",
	"StateInput.image_url.url":            "有効なURLを入力してください",
	"StateInput.sort_order.min":           "並び順は0以上で入力してください",
	"ProductInput.name.required":          "商品名は必須です",
	"ProductInput.name.max":               "商品名は100文字以内で入力してください",
	"ProductInput.affiliate_url.required": "アフィリエイトURLは必須です",
	"ProductInput.affiliate_url.url":      "有効なURLを入力してください",
	"ProductInput.image_url.url":          "有効なURLを入力してください",
	"ProductInput.state_id.min":           "状態を選択してください",
	"ProductInput.status.oneof":           "ステータスが正しくありません",
}

// Validator проверяет входные данные админских операций
type Validator struct {
	validate       *validator.Validate
	allowedDomains []string
}

// NewValidator домены сравниваются без учёта регистра, поддомены разрешены
func NewValidator(allowedDomains []string) *Validator {
	domains := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains = append(domains, d)
		}
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	val := &Validator{validate: v, allowedDomains: domains}
	// Ошибка возможна только при пустом имени тега
	_ = v.RegisterValidation("affiliate", func(fl validator.FieldLevel) bool {
		return val.AllowedAffiliateURL(fl.Field().String())
	})
	return val
}

// AllowedAffiliateURL хост совпадает с доменом из списка или является его поддоменом
func (v *Validator) AllowedAffiliateURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, d := range v.allowedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func (v *Validator) affiliateMessage() string {
	if len(v.allowedDomains) == 1 && v.allowedDomains[0] == "amazon.co.jp" {
		return "Amazon.co.jpのURLを入力してください"
	}
	return fmt.Sprintf("許可されたドメインのURLを入力してください（%s）", strings.Join(v.allowedDomains, ", "))
}

// Validate возвращает nil или *ValidationError по первому полю в порядке объявления
func (v *Validator) Validate(input any) *ValidationError {
	err := v.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: MsgInvalidInput}
	}

	fe := fieldErrs[0]
	if fe.Tag() == "affiliate" {
		return &ValidationError{Field: fe.Field(), Message: v.affiliateMessage()}
	}
	if msg, ok := validationMessages[fe.Namespace()+"."+fe.Tag()]; ok {
		return &ValidationError{Field: fe.Field(), Message: msg}
	}
	return &ValidationError{Field: fe.Field(), Message: MsgInvalidInput}
}

func normalizeCategory(in models.CategoryInput) models.CategoryInput {
	in.Name = strings.TrimSpace(in.Name)
	return in
}

func normalizeState(in models.StateInput) models.StateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		in.CategoryID = nil
	}
	return in
}

func normalizeProduct(in models.ProductInput) models.ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.AffiliateURL = strings.TrimSpace(in.AffiliateURL)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Description = strings.TrimSpace(in.Description)
	if in.Status == "" {
		in.Status = models.ProductStatusActive
	}
	return in
}
