// Package validate 对规范化后的商品载荷做业务校验，返回面向用户的字段错误。
// 载荷构造本身不会失败，是否允许提交由这里决定
package validate

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MorseWayne/catalog_admin/internal/domain"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)
	_ = validate.RegisterValidation("slug", validateSlug)
	validate.RegisterStructValidation(validatePrices, domain.ProductPayload{})
}

// Struct 校验任意带 validate 标签的结构体
func Struct(s any) error {
	return validate.Struct(s)
}

// Payload 校验商品载荷，无错误时返回 nil
func Payload(p *domain.ProductPayload) []FieldError {
	if p == nil {
		return []FieldError{{Field: "payload", Tag: "required", Message: "payload is required"}}
	}
	return Errors(validate.Struct(p))
}

// Errors 把 validator 的错误转换为字段错误列表
func Errors(err error) []FieldError {
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "payload", Tag: "invalid", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{
			Field:   fieldPath(e.Namespace()),
			Tag:     e.Tag(),
			Message: message(e),
		})
	}
	return out
}

// jsonFieldName 错误中使用 json 字段名
func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// fieldPath 去掉最外层的结构体名，例如 ProductPayload.images[0].url -> images[0].url
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

// validatePrices 售价不得高于原价，规格售价同理
func validatePrices(sl validator.StructLevel) {
	p := sl.Current().Interface().(domain.ProductPayload)
	if p.Price != nil && p.SalePrice != nil && *p.SalePrice >= *p.Price {
		sl.ReportError(p.SalePrice, "salePrice", "SalePrice", "ltfield", "price")
	}
	if p.Type == domain.ProductTypeVariable && len(p.Variations) == 0 {
		sl.ReportError(p.Variations, "variations", "Variations", "required_for_variable", "")
	}
	for i, v := range p.Variations {
		if v.SalePrice > 0 && v.Price > 0 && v.SalePrice >= v.Price {
			sl.ReportError(v.SalePrice, "variations["+strconv.Itoa(i)+"].salePrice", "SalePrice", "ltfield", "price")
		}
	}
}

func message(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be at most " + e.Param() + " characters"
	case "len":
		return field + " must be exactly " + e.Param() + " characters"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "gte":
		return field + " must be greater than or equal to " + e.Param()
	case "gt":
		return field + " must be greater than " + e.Param()
	case "slug":
		return field + " must contain only lowercase letters, digits and single dashes"
	case "ltfield":
		return field + " must be lower than " + e.Param()
	case "required_for_variable":
		return "variable products need at least one variation"
	default:
		return field + " is invalid"
	}
}
