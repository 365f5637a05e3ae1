package content

import (
	"time"
)

// Collection names as persisted in the document store.
const (
	CollectionBlogPosts       = "blogPosts"
	CollectionCampaigns       = "campaigns"
	CollectionHeroSlides      = "heroSlides"
	CollectionTeamMembers     = "teamMembers"
	CollectionRecordedShows   = "recordedShows"
	CollectionSponsors        = "sponsors"
	CollectionTopSongs        = "topSongs"
	CollectionInvitationCodes = "invitationCodes"
	CollectionWeeklySchedule  = "weeklySchedule"
	CollectionJoinSubmissions = "joinSubmissions"
	CollectionUserSubmissions = "userSubmissions"
)

type BlogPost struct {
	ID          string    `json:"id,omitempty" firestore:"-"`
	Title       string    `json:"title" firestore:"title" validate:"required,min=5,max=150"`
	Slug        string    `json:"slug" firestore:"slug"`
	Author      string    `json:"author" firestore:"author" validate:"required,min=2"`
	PublishDate time.Time `json:"publishDate" firestore:"publishDate"`
	Excerpt     string    `json:"excerpt" firestore:"excerpt" validate:"required,min=10,max=300"`
	Content     string    `json:"content" firestore:"content" validate:"required,min=20"`
	ImageURL    string    `json:"imageUrl" firestore:"imageUrl" validate:"required,url"`
	Category    string    `json:"category" firestore:"category" validate:"required,min=2"`
}

type Campaign struct {
	ID          string `json:"id,omitempty" firestore:"-"`
	Title       string `json:"title" firestore:"title" validate:"required,min=3"`
	Date        string `json:"date" firestore:"date" validate:"required"`
	Description string `json:"description" firestore:"description" validate:"required,min=10"`
	Icon        string `json:"icon" firestore:"icon" validate:"required,oneof=heart users gift megaphone"`
}

type HeroSlide struct {
	ID          string `json:"id,omitempty" firestore:"-"`
	Title       string `json:"title" firestore:"title" validate:"required,min=3"`
	Description string `json:"description" firestore:"description" validate:"required,min=5"`
	ImageURL    string `json:"imageUrl" firestore:"imageUrl" validate:"required,url"`
	ImageHint   string `json:"imageHint" firestore:"imageHint"`
	Order       int    `json:"order" firestore:"order" validate:"gte=0"`
	ButtonText  string `json:"buttonText,omitempty" firestore:"buttonText,omitempty" validate:"required_with=ButtonLink"`
	ButtonLink  string `json:"buttonLink,omitempty" firestore:"buttonLink,omitempty" validate:"required_with=ButtonText,omitempty,url"`
}

type TeamMember struct {
	ID           string `json:"id,omitempty" firestore:"-"`
	Name         string `json:"name" firestore:"name" validate:"required,min=2"`
	Role         string `json:"role" firestore:"role" validate:"required,min=2"`
	Image        string `json:"image" firestore:"image" validate:"required,url"`
	Hint         string `json:"hint" firestore:"hint"`
	Order        int    `json:"order" firestore:"order" validate:"gte=0"`
	InstagramURL string `json:"instagramUrl,omitempty" firestore:"instagramUrl,omitempty" validate:"omitempty,url"`
	FacebookURL  string `json:"facebookUrl,omitempty" firestore:"facebookUrl,omitempty" validate:"omitempty,url"`
	TwitterURL   string `json:"twitterUrl,omitempty" firestore:"twitterUrl,omitempty" validate:"omitempty,url"`
}

type RecordedShow struct {
	ID          string    `json:"id,omitempty" firestore:"-"`
	Title       string    `json:"title" firestore:"title" validate:"required,min=3"`
	Host        string    `json:"host" firestore:"host" validate:"required,min=2"`
	PublishDate time.Time `json:"publishDate" firestore:"publishDate"`
	Duration    string    `json:"duration" firestore:"duration" validate:"required"`
	Description string    `json:"description" firestore:"description" validate:"required,min=10"`
	ImageURL    string    `json:"imageUrl" firestore:"imageUrl" validate:"required,url"`
	ImageHint   string    `json:"imageHint" firestore:"imageHint"`
	AudioURL    string    `json:"audioUrl,omitempty" firestore:"audioUrl,omitempty" validate:"omitempty,url"`
	AudioType   string    `json:"audioType,omitempty" firestore:"audioType,omitempty"`
	AudioLength int64     `json:"audioLength,omitempty" firestore:"audioLength,omitempty" validate:"gte=0"`
	GUID        string    `json:"guid,omitempty" firestore:"guid,omitempty"` // set for shows imported from a podcast feed
}

type Sponsor struct {
	ID         string `json:"id,omitempty" firestore:"-"`
	Name       string `json:"name" firestore:"name" validate:"required,min=2"`
	ImageURL   string `json:"imageUrl" firestore:"imageUrl" validate:"required,url"`
	Hint       string `json:"hint" firestore:"hint"`
	WebsiteURL string `json:"websiteUrl" firestore:"websiteUrl" validate:"required,url"`
	Level      string `json:"level" firestore:"level" validate:"required,oneof=platinum gold silver"`
	Order      int    `json:"order" firestore:"order" validate:"gte=0"`
}

type Song struct {
	ID               string `json:"id,omitempty" firestore:"-"`
	Rank             int    `json:"rank" firestore:"rank" validate:"gte=1"`
	Title            string `json:"title" firestore:"title" validate:"required"`
	Artist           string `json:"artist" firestore:"artist" validate:"required"`
	CoverArt         string `json:"coverArt" firestore:"coverArt" validate:"required,url"`
	CoverArtHint     string `json:"coverArtHint" firestore:"coverArtHint"`
	ExternalLink     string `json:"externalLink,omitempty" firestore:"externalLink,omitempty"` // legacy, no longer rendered
	YoutubeVideoID   string `json:"youtubeVideoId,omitempty" firestore:"youtubeVideoId,omitempty" validate:"omitempty,max=20"`
	SpotifyLink      string `json:"spotifyLink,omitempty" firestore:"spotifyLink,omitempty" validate:"omitempty,url"`
	AppleMusicLink   string `json:"appleMusicLink,omitempty" firestore:"appleMusicLink,omitempty" validate:"omitempty,url"`
	YoutubeMusicLink string `json:"youtubeMusicLink,omitempty" firestore:"youtubeMusicLink,omitempty" validate:"omitempty,url"`
}

type InvitationCode struct {
	ID        string     `json:"id,omitempty" firestore:"-"`
	Code      string     `json:"code" firestore:"code" validate:"required,min=6,max=64"`
	CreatedAt time.Time  `json:"createdAt" firestore:"createdAt"`
	Used      bool       `json:"used" firestore:"used"`
	UsedBy    string     `json:"usedBy,omitempty" firestore:"usedBy,omitempty"`
	UsedAt    *time.Time `json:"usedAt,omitempty" firestore:"usedAt,omitempty"`
}

// Program is one entry of a weekday's schedule. Entries carry no id of
// their own; they are addressed by position within the day.
type Program struct {
	Time  string `json:"time" firestore:"time" validate:"required,datetime=15:04"`
	Title string `json:"title" firestore:"title" validate:"required,min=2"`
	Host  string `json:"host" firestore:"host" validate:"required,min=2"`
}

type ScheduleDay struct {
	Day      string    `json:"day" firestore:"day"`
	Schedule []Program `json:"schedule" firestore:"schedule"`
}

type JoinSubmission struct {
	ID        string    `json:"id,omitempty" firestore:"-"`
	Name      string    `json:"name" firestore:"name" validate:"required,min=2"`
	Email     string    `json:"email" firestore:"email" validate:"required,email"`
	Phone     string    `json:"phone,omitempty" firestore:"phone,omitempty" validate:"omitempty,min=6,max=20"`
	Interest  string    `json:"interest" firestore:"interest" validate:"required"`
	Message   string    `json:"message" firestore:"message" validate:"required,min=10,max=2000"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	Reviewed  bool      `json:"reviewed" firestore:"reviewed"`
}

const (
	SubmissionRequest  = "request"
	SubmissionShoutout = "shoutout"
)

type UserSubmission struct {
	ID        string    `json:"id,omitempty" firestore:"-"`
	Type      string    `json:"type" firestore:"type" validate:"required,oneof=request shoutout"`
	Name      string    `json:"name" firestore:"name" validate:"required,min=2"`
	Contact   string    `json:"contact,omitempty" firestore:"contact,omitempty" validate:"max=120"`
	Song      string    `json:"song,omitempty" firestore:"song,omitempty" validate:"required_if=Type request"`
	Artist    string    `json:"artist,omitempty" firestore:"artist,omitempty"`
	Message   string    `json:"message" firestore:"message" validate:"required,min=3,max=1000"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	Read      bool      `json:"read" firestore:"read"`
}

func (v *BlogPost) DocID() string            { return v.ID }
func (v *BlogPost) SetDocID(id string)       { v.ID = id }
func (v *Campaign) DocID() string            { return v.ID }
func (v *Campaign) SetDocID(id string)       { v.ID = id }
func (v *HeroSlide) DocID() string           { return v.ID }
func (v *HeroSlide) SetDocID(id string)      { v.ID = id }
func (v *TeamMember) DocID() string          { return v.ID }
func (v *TeamMember) SetDocID(id string)     { v.ID = id }
func (v *RecordedShow) DocID() string        { return v.ID }
func (v *RecordedShow) SetDocID(id string)   { v.ID = id }
func (v *Sponsor) DocID() string             { return v.ID }
func (v *Sponsor) SetDocID(id string)        { v.ID = id }
func (v *Song) DocID() string                { return v.ID }
func (v *Song) SetDocID(id string)           { v.ID = id }
func (v *InvitationCode) DocID() string      { return v.ID }
func (v *InvitationCode) SetDocID(id string) { v.ID = id }
func (v *JoinSubmission) DocID() string      { return v.ID }
func (v *JoinSubmission) SetDocID(id string) { v.ID = id }
func (v *UserSubmission) DocID() string      { return v.ID }
func (v *UserSubmission) SetDocID(id string) { v.ID = id }
