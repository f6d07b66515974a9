package models

import (
	"encoding/json"
	"time"
)

// Score bounds for a review.
const (
	MinScore = 1
	MaxScore = 10
)

// Review is a user's scored opinion of a title. One per (title, author).
type Review struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	TitleID  uint      `gorm:"not null;uniqueIndex:idx_reviews_title_author" json:"-"`
	AuthorID uint      `gorm:"not null;uniqueIndex:idx_reviews_title_author" json:"-"`
	Title    Title     `gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE" json:"-"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Text     string    `gorm:"not null" json:"text"`
	Score    int       `gorm:"not null;check:chk_reviews_score,score >= 1 AND score <= 10" json:"score"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
}

// MarshalJSON renders the author by username.
func (r Review) MarshalJSON() ([]byte, error) {
	type review Review
	return json.Marshal(struct {
		review
		Author string `json:"author"`
	}{review(r), r.Author.Username})
}

// Comment is a reply attached to a review.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	ReviewID uint      `gorm:"not null;index" json:"-"`
	AuthorID uint      `gorm:"not null;index" json:"-"`
	Review   Review    `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE" json:"-"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Text     string    `gorm:"not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
}

// MarshalJSON renders the author by username.
func (c Comment) MarshalJSON() ([]byte, error) {
	type comment Comment
	return json.Marshal(struct {
		comment
		Author string `json:"author"`
	}{comment(c), c.Author.Username})
}
