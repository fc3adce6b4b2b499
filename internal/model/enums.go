package model

import (
	"fmt"
	"strings"

	"github.com/anyulbade/retail-insights-engine/internal/apperr"
)

type Region string

const (
	Region1  Region = "Region1"
	Region2  Region = "Region2"
	Region3  Region = "Region3"
	Region4  Region = "Region4"
	Region5  Region = "Region5"
	Region6  Region = "Region6"
	Region7  Region = "Region7"
	Region8  Region = "Region8"
	Region9  Region = "Region9"
	Region10 Region = "Region10"
)

var Regions = []Region{Region1, Region2, Region3, Region4, Region5, Region6, Region7, Region8, Region9, Region10}

type Brand string

var Brands = func() []Brand {
	out := make([]Brand, 0, 10)
	for c := 'A'; c <= 'J'; c++ {
		out = append(out, Brand(fmt.Sprintf("Brand%c", c)))
	}
	return out
}()

type Category string

const (
	CategoryElectronics    Category = "electronics"
	CategoryFashion        Category = "fashion"
	CategoryHomeAppliances Category = "home_appliances"
	CategoryBeauty         Category = "beauty"
	CategorySports         Category = "sports"
	CategoryBooks          Category = "books"
	CategoryToys           Category = "toys"
	CategoryAutomotive     Category = "automotive"
	CategoryGroceries      Category = "groceries"
	CategoryFurniture      Category = "furniture"
	CategoryHealth         Category = "health"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentDebitCard    PaymentMethod = "debit_card"
	PaymentPaypal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCash         PaymentMethod = "cash"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type ReturnStatus string

const (
	ReturnInitiated ReturnStatus = "initiated"
	ReturnApproved  ReturnStatus = "approved"
	ReturnRejected  ReturnStatus = "rejected"
	ReturnCompleted ReturnStatus = "completed"
)

type IncomeBracket string

const (
	IncomeLow    IncomeBracket = "low"
	IncomeMedium IncomeBracket = "medium"
	IncomeHigh   IncomeBracket = "high"
)

type MaritalStatus string

const (
	MaritalSingle   MaritalStatus = "single"
	MaritalMarried  MaritalStatus = "married"
	MaritalDivorced MaritalStatus = "divorced"
	MaritalWidowed  MaritalStatus = "widowed"
)

type EducationLevel string

const (
	EducationHighSchool EducationLevel = "high_school"
	EducationAssociate  EducationLevel = "associate_degree"
	EducationBachelor   EducationLevel = "bachelor_degree"
	EducationMaster     EducationLevel = "master_degree"
	EducationDoctorate  EducationLevel = "doctorate"
)

type EmploymentStatus string

const (
	EmploymentEmployed   EmploymentStatus = "employed"
	EmploymentUnemployed EmploymentStatus = "unemployed"
	EmploymentStudent    EmploymentStatus = "student"
	EmploymentRetired    EmploymentStatus = "retired"
)

// ParseRegion accepts "Region3", "region3" and the legacy "RegionEnum.Region3" form.
func ParseRegion(raw string) (Region, error) {
	return parseEnum("region", raw, Regions)
}

// ParseBrand accepts "BrandA", "branda" and the legacy "BrandEnum.BrandA" form.
func ParseBrand(raw string) (Brand, error) {
	return parseEnum("brand", raw, Brands)
}

func parseEnum[T ~string](field, raw string, values []T) (T, error) {
	v := strings.TrimSpace(raw)
	if i := strings.LastIndex(v, "."); i >= 0 {
		v = v[i+1:]
	}
	for _, candidate := range values {
		if strings.EqualFold(string(candidate), v) {
			return candidate, nil
		}
	}
	var zero T
	return zero, apperr.InvalidFilter(field, raw)
}
