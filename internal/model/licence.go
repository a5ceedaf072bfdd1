package model

// Licence is a licence a content can be distributed under, identified by its code (e.g. "CC BY").
type Licence struct {
	Code  string `gorm:"primaryKey"`
	Title string `gorm:"not null"`
}

func (Licence) TableName() string {
	return "licences"
}
