package model

// Company is the sole domain entity. ID is assigned by the store that
// persists it and is unique within the collection.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int    `json:"size"`
}

// CompanyInput is the payload accepted when creating a company.
type CompanyInput struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// SampleCompanies returns the records the in-memory store can be seeded with.
func SampleCompanies() []Company {
	return []Company{
		{ID: "1", Name: "Alpha", Size: 150},
		{ID: "2", Name: "Bravo", Size: 160},
		{ID: "3", Name: "Charlie", Size: 170},
	}
}
