package models

type Profile struct {
	ID         uint64 `gorm:"primarykey" json:"id"`
	UserID     uint64 `gorm:"uniqueIndex;not null" json:"user"`
	Bio        string `gorm:"type:text" json:"bio"`
	ProfilePic string `gorm:"type:varchar(255)" json:"profile_pic"`
	Position   string `gorm:"type:varchar(100)" json:"position"`
}
