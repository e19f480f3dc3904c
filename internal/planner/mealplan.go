package planner

import "autism-diet-planner/internal/diet"

// CustomOption fills a slot when no candidate survives the allergy filter.
const CustomOption = "Custom Option"

// WeeklyPlan is a table of meal slots (rows) by days (columns). It is built
// once by Build and only read afterwards; copies are independent.
type WeeklyPlan struct {
	DietType  diet.DietType
	Allergies diet.AllergySet
	cells     [5][7]string
}

// Cell returns the dish planned for a slot on a day.
func (p WeeklyPlan) Cell(day diet.Day, slot diet.MealSlot) string {
	return p.cells[slot][day]
}

// Row returns the seven dishes of a slot, Monday first.
func (p WeeklyPlan) Row(slot diet.MealSlot) []string {
	row := p.cells[slot]
	return append([]string(nil), row[:]...)
}

// PlanRow is a slot with its dishes, in the shape templates iterate over.
type PlanRow struct {
	Meal  string
	Cells []string
}

// Rows returns every slot in display order.
func (p WeeklyPlan) Rows() []PlanRow {
	rows := make([]PlanRow, 0, len(diet.MealSlots))
	for _, slot := range diet.MealSlots {
		rows = append(rows, PlanRow{Meal: slot.String(), Cells: p.Row(slot)})
	}
	return rows
}

// Header returns the column titles: "Meal" followed by the days of the week.
func Header() []string {
	header := []string{"Meal"}
	for _, d := range diet.Days {
		header = append(header, d.String())
	}
	return header
}
