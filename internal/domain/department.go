package domain

import "strings"

// Department routes a task to a public-works unit.
type Department string

const (
	DepartmentElectricity Department = "Electricity"
	DepartmentRoads       Department = "Roads"
	DepartmentWater       Department = "Water"
	DepartmentSanitation  Department = "Sanitation"
	DepartmentGeneral     Department = "General"
)

// Departments lists every routable department.
func Departments() []Department {
	return []Department{
		DepartmentElectricity,
		DepartmentRoads,
		DepartmentWater,
		DepartmentSanitation,
		DepartmentGeneral,
	}
}

// ParseDepartment maps free-form input to a canonical department.
func ParseDepartment(value string) (Department, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "electricity", "electric", "power":
		return DepartmentElectricity, true
	case "roads", "road":
		return DepartmentRoads, true
	case "water":
		return DepartmentWater, true
	case "sanitation", "waste":
		return DepartmentSanitation, true
	case "general":
		return DepartmentGeneral, true
	default:
		return "", false
	}
}
