// Package report defines the canonical result shapes returned by platform fetchers.
//
// Every fetcher fills in a template created by one of the New* constructors, so
// callers always receive a structurally complete report even when the upstream
// could not be reached. Numeric fields default to zero, nullable fields to nil.
package report

import "errors"

// Common errors returned by platform packages.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrRateLimited     = errors.New("rate limited")
	ErrUnknownPlatform = errors.New("unknown platform")
)

// Envelope is the JSON envelope wrapping every per-platform report.
type Envelope struct {
	Message string `json:"message"`
	Report  any    `json:"report"`
}

// Degraded-mode messages for LeetCode reports. The two messages distinguish
// "profile reachable but statistics withheld" from "nothing usable found".
const (
	MsgStatsUnavailable = "Profile data retrieved, but detailed problem statistics are not available from public APIs."
	MsgProfileNotFound  = "Unable to retrieve LeetCode profile data. User may not exist or profile may be private."
)

// LeetCode is the canonical LeetCode report shape.
//
//nolint:govet // fieldalignment: wire format ordering
type LeetCode struct {
	Error              bool           `json:"error"`
	ErrorMessage       *string        `json:"errorMessage"`
	Username           string         `json:"username"`
	TotalSolved        int            `json:"totalSolved"`
	EasySolved         int            `json:"easySolved"`
	MediumSolved       int            `json:"mediumSolved"`
	HardSolved         int            `json:"hardSolved"`
	AcceptanceRate     float64        `json:"acceptanceRate"`
	Ranking            *int           `json:"ranking"`
	Reputation         int            `json:"reputation"`
	ContributionPoints int            `json:"contributionPoints"`
	Streak             int            `json:"streak"`
	TotalActiveDays    int            `json:"totalActiveDays"`
	SubmissionCalendar map[string]int `json:"submissionCalendar"`
}

// NewLeetCode returns the degraded LeetCode template for username.
// The error flag is set; a successful extraction clears it.
func NewLeetCode(username string) *LeetCode {
	msg := MsgStatsUnavailable
	return &LeetCode{
		Error:              true,
		ErrorMessage:       &msg,
		Username:           username,
		SubmissionCalendar: map[string]int{},
	}
}

// HasStats reports whether any of the four solved counts is populated.
func (r *LeetCode) HasStats() bool {
	return r.TotalSolved > 0 || r.EasySolved > 0 || r.MediumSolved > 0 || r.HardSolved > 0
}

// HasProfileSignal reports whether the report carries any profile-level data
// beyond the bare template (ranking, calendar, reputation or streak).
func (r *LeetCode) HasProfileSignal() bool {
	return r.Ranking != nil || len(r.SubmissionCalendar) > 0 || r.Reputation > 0 ||
		r.Streak > 0 || r.TotalActiveDays > 0
}

// Contest describes a single Codeforces contest participation.
type Contest struct {
	ContestID    int    `json:"contestId"`
	ContestName  string `json:"contestName"`
	Rank         int    `json:"rank"`
	RatingChange int    `json:"ratingChange"`
	NewRating    int    `json:"newRating"`
	OldRating    int    `json:"oldRating"`
}

// Codeforces is the canonical Codeforces report shape.
//
//nolint:govet // fieldalignment: wire format ordering
type Codeforces struct {
	Username         string   `json:"username"`
	Rating           int      `json:"rating"`
	MaxRating        int      `json:"maxRating"`
	Rank             string   `json:"rank"`
	MaxRank          string   `json:"maxRank"`
	Organization     string   `json:"organization"`
	Contribution     int      `json:"contribution"`
	FriendOfCount    int      `json:"friendOfCount"`
	TotalContests    int      `json:"totalContests"`
	AvgChange        float64  `json:"avgChange"`
	LastContest      *Contest `json:"lastContest"`
	ProblemsSolved   int      `json:"problemsSolved"`
	FirstName        string   `json:"firstName,omitempty"`
	LastName         string   `json:"lastName,omitempty"`
	Country          string   `json:"country,omitempty"`
	City             string   `json:"city,omitempty"`
	RegistrationTime int64    `json:"registrationTimeSeconds,omitempty"`
	LastOnlineTime   int64    `json:"lastOnlineTimeSeconds,omitempty"`
	ProfileURL       string   `json:"profileUrl"`
	Avatar           string   `json:"avatar"`
}

// NewCodeforces returns the Codeforces template for username.
func NewCodeforces(username string) *Codeforces {
	return &Codeforces{
		Username:   username,
		Rank:       "unrated",
		MaxRank:    "unrated",
		ProfileURL: "https://codeforces.com/profile/" + username,
		Avatar:     "https://userpic.codeforces.org/no-avatar.jpg",
	}
}

// CodeChef is the canonical CodeChef report shape.
//
//nolint:govet // fieldalignment: wire format ordering
type CodeChef struct {
	Username       string `json:"username"`
	Name           string `json:"name"`
	Stars          string `json:"stars"`
	Rating         string `json:"rating"`
	HighestRating  string `json:"highestRating"`
	GlobalRank     string `json:"globalRank"`
	CountryRank    string `json:"countryRank"`
	ProblemsSolved string `json:"problemsSolved"`
	Country        string `json:"country,omitempty"`
	Institution    string `json:"institution,omitempty"`
	ProfileURL     string `json:"profileUrl"`
}

// NewCodeChef returns the CodeChef template for username.
func NewCodeChef(username string) *CodeChef {
	return &CodeChef{
		Username:       username,
		Name:           username,
		Stars:          "Unrated",
		Rating:         "0",
		HighestRating:  "N/A",
		GlobalRank:     "N/A",
		CountryRank:    "N/A",
		ProblemsSolved: "0",
		ProfileURL:     "https://www.codechef.com/users/" + username,
	}
}

// Language describes one course on a Duolingo profile.
type Language struct {
	Language string `json:"language"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
	Crowns   int    `json:"crowns"`
}

// Duolingo is the canonical Duolingo report shape.
//
//nolint:govet // fieldalignment: wire format ordering
type Duolingo struct {
	Username         string     `json:"username"`
	Name             string     `json:"name,omitempty"`
	Streak           int        `json:"streak"`
	TotalXP          int        `json:"totalXp"`
	Languages        []Language `json:"languages"`
	AvatarURL        string     `json:"avatarUrl,omitempty"`
	Country          string     `json:"country,omitempty"`
	Bio              string     `json:"bio,omitempty"`
	CreationDate     int64      `json:"creationDate,omitempty"`
	LearningLanguage string     `json:"learningLanguage,omitempty"`
	FromLanguage     string     `json:"fromLanguage,omitempty"`
}

// NewDuolingo returns the Duolingo template for username.
func NewDuolingo(username string) *Duolingo {
	return &Duolingo{
		Username:  username,
		Languages: []Language{},
	}
}

// SocialLinks groups the external profile links found on a HackerRank page.
type SocialLinks struct {
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Website  string `json:"website,omitempty"`
}

// HackerRank is the canonical HackerRank report shape.
//
//nolint:govet // fieldalignment: wire format ordering
type HackerRank struct {
	Username       string      `json:"username"`
	FullName       string      `json:"fullName,omitempty"`
	Bio            string      `json:"bio,omitempty"`
	Country        string      `json:"country,omitempty"`
	ProfileImage   string      `json:"profileImage,omitempty"`
	FollowersCount int         `json:"followersCount"`
	FollowingCount int         `json:"followingCount"`
	SocialLinks    SocialLinks `json:"socialLinks"`
	Badges         []string    `json:"badges"`
	Skills         []string    `json:"skills"`
}

// NewHackerRank returns the HackerRank template for username.
func NewHackerRank(username string) *HackerRank {
	return &HackerRank{
		Username: username,
		Badges:   []string{},
		Skills:   []string{},
	}
}
