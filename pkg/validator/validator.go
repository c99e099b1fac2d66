// Package validator wires domain value checks into go-playground/validator so
// gin binding tags can use them directly.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/nucmed/petplan/internal/model"
)

// maxDayBlocks bounds slot indices accepted from clients; the grid itself is
// configurable but never wider than this.
const maxDayBlocks = 144

// Register installs the custom validations on gin's binding validator. Call
// once at startup.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("dosetype", validDoseType); err != nil {
		return err
	}
	if err := v.RegisterValidation("qcunit", validQCUnit); err != nil {
		return err
	}
	return v.RegisterValidation("dayblock", validDayBlock)
}

func validDoseType(fl validator.FieldLevel) bool {
	switch model.DoseType(fl.Field().String()) {
	case model.DoseTypePerKg, model.DoseTypeFixed:
		return true
	}
	return false
}

func validQCUnit(fl validator.FieldLevel) bool {
	switch model.QCUnit(fl.Field().String()) {
	case model.QCUnitPercentOfDose, model.QCUnitAbsoluteMBq:
		return true
	}
	return false
}

func validDayBlock(fl validator.FieldLevel) bool {
	b := fl.Field().Int()
	return b >= 0 && b < maxDayBlocks
}
