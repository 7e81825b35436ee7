package models

import (
	"fmt"
	"strings"
)

// Difficulty levels for a question
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// QuestionOption represents one selectable choice of a question
type QuestionOption struct {
	Label  string `json:"label"`
	TextJP string `json:"text_jp"`
	TextEN string `json:"text_en"`
}

// Question represents one immutable quiz question.
//
// Field names mirror the question interchange format, so questions exported
// from one installation can be imported into another unchanged.
type Question struct {
	Chapter       int               `json:"chapter"` // 1-12
	DomainJP      string            `json:"domain_jp"`
	DomainEN      string            `json:"domain_en"`
	ID            int               `json:"id"` // unique within a chapter for a given deck
	QuestionJP    string            `json:"question_jp"`
	QuestionEN    string            `json:"question_en"`
	Options       []QuestionOption  `json:"options"`
	Answer        string            `json:"answer"`
	ExplanationJP string            `json:"explanation_jp"`
	ExplanationEN string            `json:"explanation_en"`
	TagsJP        []string          `json:"tags_jp"`
	TagsEN        []string          `json:"tags_en"`
	Difficulty    string            `json:"difficulty"`
	Type          string            `json:"type,omitempty"`    // "single" for selectable questions
	WhyNot        map[string]string `json:"why_not,omitempty"` // per-option wrong-answer notes
}

// IsMatching reports whether the question is matching-style: answered by
// revealing the canonical answer instead of selecting an option. A question
// with at most one option is matching-style, and so is any question whose
// answer contains the pair separator, regardless of option count.
func (q *Question) IsMatching() bool {
	return len(q.Options) <= 1 || strings.Contains(q.Answer, "-")
}

// Tags returns the tag list for the requested language, falling back to the
// other language when the preferred list is empty.
func (q *Question) Tags(showEn bool) []string {
	if showEn {
		if len(q.TagsEN) > 0 {
			return q.TagsEN
		}
		return q.TagsJP
	}
	if len(q.TagsJP) > 0 {
		return q.TagsJP
	}
	return q.TagsEN
}

// Deck represents a named, ordered collection of questions
type Deck struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	IsBuiltin   bool       `json:"isBuiltin"`
	CreatedAt   string     `json:"createdAt,omitempty"` // set for custom decks only
}

// QuestionKey computes the composite key identifying a question within a deck.
// It is the join key across history, the starred set, and error reports, and
// must stay stable because it also appears in exported snapshots.
func QuestionKey(deckID string, q *Question) string {
	return fmt.Sprintf("%s-%d-%d", deckID, q.Chapter, q.ID)
}

// Chapter type partition
const (
	ChapterTypeDomain = "domain"
	ChapterTypeExam   = "exam"

	// MinChapter and MaxChapter bound valid chapter numbers.
	MinChapter = 1
	MaxChapter = 12

	// DomainChapterBoundary is the last chapter of the domain partition;
	// chapters above it are practice-exam chapters.
	DomainChapterBoundary = 8
)

// ChapterInfo describes one chapter of the curriculum
type ChapterInfo struct {
	Chapter int    `json:"ch"`
	TitleJP string `json:"jp"`
	TitleEN string `json:"en"`
	Type    string `json:"type"` // "domain" or "exam"
}

// Chapters is the built-in curriculum: eight knowledge domains followed by
// four practice exams.
var Chapters = []ChapterInfo{
	{Chapter: 1, TitleJP: "セキュリティとリスクマネジメント", TitleEN: "Security and Risk Management", Type: ChapterTypeDomain},
	{Chapter: 2, TitleJP: "資産のセキュリティ", TitleEN: "Asset Security", Type: ChapterTypeDomain},
	{Chapter: 3, TitleJP: "セキュリティアーキテクチャとエンジニアリング", TitleEN: "Security Architecture and Engineering", Type: ChapterTypeDomain},
	{Chapter: 4, TitleJP: "通信とネットワークセキュリティ", TitleEN: "Communication and Network Security", Type: ChapterTypeDomain},
	{Chapter: 5, TitleJP: "アイデンティティとアクセス管理", TitleEN: "Identity and Access Management", Type: ChapterTypeDomain},
	{Chapter: 6, TitleJP: "セキュリティ評価とテスト", TitleEN: "Security Assessment and Testing", Type: ChapterTypeDomain},
	{Chapter: 7, TitleJP: "セキュリティ運用", TitleEN: "Security Operations", Type: ChapterTypeDomain},
	{Chapter: 8, TitleJP: "ソフトウェア開発セキュリティ", TitleEN: "Software Development Security", Type: ChapterTypeDomain},
	{Chapter: 9, TitleJP: "模擬試験1", TitleEN: "Practice Exam 1", Type: ChapterTypeExam},
	{Chapter: 10, TitleJP: "模擬試験2", TitleEN: "Practice Exam 2", Type: ChapterTypeExam},
	{Chapter: 11, TitleJP: "模擬試験3", TitleEN: "Practice Exam 3", Type: ChapterTypeExam},
	{Chapter: 12, TitleJP: "模擬試験4", TitleEN: "Practice Exam 4", Type: ChapterTypeExam},
}
