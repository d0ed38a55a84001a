package models

import "time"

type GenerationReading struct {
	TS               time.Time `gorm:"column:ts;primaryKey" json:"ts"`
	City             string    `gorm:"column:city;primaryKey" json:"city"`
	PowerGeneratedKW float64   `gorm:"column:power_generated_kw" json:"power_generated_kw"`
	Source           string    `gorm:"column:source" json:"source"`
}

func (GenerationReading) TableName() string { return "generation_readings" }
