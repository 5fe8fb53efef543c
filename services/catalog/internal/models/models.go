package models

type Name struct {
	English  string `json:"english"`
	Japanese string `json:"japanese"`
	Chinese  string `json:"chinese"`
	French   string `json:"french"`
}

type Base struct {
	HP        int `gorm:"column:hp"         json:"HP"`
	Attack    int `gorm:"column:attack"     json:"Attack"`
	Defense   int `gorm:"column:defense"    json:"Defense"`
	SpAttack  int `gorm:"column:sp_attack"  json:"Sp. Attack"`
	SpDefense int `gorm:"column:sp_defense" json:"Sp. Defense"`
	Speed     int `gorm:"column:speed"      json:"Speed"`
}

// Pokemon is keyed by its pokedex number, which the client supplies.
type Pokemon struct {
	ID   int      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name Name     `gorm:"embedded;embeddedPrefix:name_"  json:"name"`
	Type []string `gorm:"serializer:json;type:text"      json:"type"`
	Base Base     `gorm:"embedded;embeddedPrefix:base_"  json:"base"`
}
