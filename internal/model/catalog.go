package model

import (
	"github.com/google/uuid"
)

// CatalogSnapshot is the immutable input handed to a plan run: the caller's
// current attribute set resolved into explicit entity lists. The snapshot is
// built once per run; catalog edits after that point do not leak in, and the
// set selection is a parameter here rather than process state.
type CatalogSnapshot struct {
	SetName       string          `json:"set_name"`
	Radionuclides []*Radionuclide `json:"radionuclides"`
	Tracers       []*Tracer       `json:"tracers"`
	Schemes       []*DosingScheme `json:"schemes"`
	Patients      []*Patient      `json:"patients"`
	DaySetup      *DaySetup       `json:"day_setup"`
}

// SchemeByID resolves a dosing scheme from the snapshot, nil when absent.
func (c *CatalogSnapshot) SchemeByID(id uuid.UUID) *DosingScheme {
	for _, s := range c.Schemes {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// TracerByID resolves a tracer from the snapshot, nil when absent.
func (c *CatalogSnapshot) TracerByID(id uuid.UUID) *Tracer {
	for _, t := range c.Tracers {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// RadionuclideByID resolves a radionuclide from the snapshot, nil when absent.
func (c *CatalogSnapshot) RadionuclideByID(id uuid.UUID) *Radionuclide {
	for _, r := range c.Radionuclides {
		if r.ID == id {
			return r
		}
	}
	return nil
}
