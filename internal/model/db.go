package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Licence{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&PublishableContent{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&PublishedContent{}); err != nil {
		return err
	}

	return nil
}
