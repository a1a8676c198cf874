package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Vocabulary Vocabulary      `yaml:"vocabulary"`
	Scoring    ScoringConfig   `yaml:"scoring"`
	Translate  TranslateConfig `yaml:"translate"`
	Search     SearchConfig    `yaml:"search"`
	Fetch      FetchConfig     `yaml:"fetch"`
	LLM        LLMConfig       `yaml:"llm"`
	Serve      ServeConfig     `yaml:"serve"`
	Log        LogConfig       `yaml:"log"`
}

// Vocabulary holds every domain-specific word list used by the scorer,
// the suggestion engine and the summary extractor.
type Vocabulary struct {
	ThemeKeywords    []string `yaml:"theme_keywords"`
	ExpansionTerm    string   `yaml:"expansion_term"`
	AuthorityDomains []string `yaml:"authority_domains"`
	LinkDenylist     []string `yaml:"link_denylist"`
	StopWords        []string `yaml:"stop_words"`
	SentenceDenylist []string `yaml:"sentence_denylist"`

	// PrimaryScript is the Unicode script name of the domain's own language
	// (e.g. "Han"); queries written in it get native-language templates.
	PrimaryScript string `yaml:"primary_script"`

	ExplanatoryWords LocalizedList `yaml:"explanatory_words"`
	FallbackSuffixes LocalizedList `yaml:"fallback_suffixes"`
	// Insufficient may hold one %s (or %q) verb for the query.
	Insufficient LocalizedText `yaml:"insufficient"`
}

type LocalizedList struct {
	Native []string `yaml:"native"`
	Latin  []string `yaml:"latin"`
}

type LocalizedText struct {
	Native string `yaml:"native"`
	Latin  string `yaml:"latin"`
}

// ScoringConfig exposes the heuristic tunables. The additive score weights
// themselves are fixed in the scorer package.
type ScoringConfig struct {
	SuggestionPages   int     `yaml:"suggestion_pages"`
	SummaryPages      int     `yaml:"summary_pages"`
	SummarySentences  int     `yaml:"summary_sentences"`
	MaxSubPages       int     `yaml:"max_sub_pages"`
	SubPageWeight     float64 `yaml:"sub_page_weight"`
	FuzzyTolerance    float64 `yaml:"fuzzy_tolerance"`
	NGramMin          int     `yaml:"ngram_min"`
	NGramMax          int     `yaml:"ngram_max"`
	MaxSuggestions    int     `yaml:"max_suggestions"`
	MinSuggestions    int     `yaml:"min_suggestions"`
	CandidateMinLen   int     `yaml:"candidate_min_len"`
	CandidateMaxLen   int     `yaml:"candidate_max_len"`
	SentenceMinNative int     `yaml:"sentence_min_native"`
	SentenceMinLatin  int     `yaml:"sentence_min_latin"`
	SentenceMaxNative int     `yaml:"sentence_max_native"`
	SentenceMaxLatin  int     `yaml:"sentence_max_latin"`
	Concurrency       int     `yaml:"concurrency"`
}

type TranslateConfig struct {
	Provider    string        `yaml:"provider"` // google, llm, glossary, none
	Languages   []string      `yaml:"languages"`
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	// Glossary maps keyword -> language code -> translation.
	Glossary map[string]map[string]string `yaml:"glossary,omitempty"`
}

type SearchConfig struct {
	Provider     string   `yaml:"provider"` // google, searxng, feed, file
	Limit        int      `yaml:"limit"`
	Expand       bool     `yaml:"expand"`
	GoogleAPIKey string   `yaml:"google_api_key,omitempty"`
	GoogleCX     string   `yaml:"google_cx,omitempty"`
	Region       string   `yaml:"region,omitempty"`
	SearxURL     string   `yaml:"searx_url,omitempty"`
	Feeds        []string `yaml:"feeds,omitempty"`
	File         string   `yaml:"file,omitempty"`
}

type FetchConfig struct {
	Concurrency    int    `yaml:"concurrency"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type ServeConfig struct {
	Addr        string `yaml:"addr"`
	SaveHistory bool   `yaml:"save_history"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

func Default() *Config {
	return &Config{
		Vocabulary: DefaultVocabulary(),
		Scoring:    DefaultScoring(),
		Translate: TranslateConfig{
			Provider:    "google",
			Languages:   []string{"en", "zh-TW", "ja", "ko"},
			Timeout:     1500 * time.Millisecond,
			Concurrency: 4,
		},
		Search: SearchConfig{
			Provider: "google",
			Limit:    10,
			Expand:   true,
			Region:   "tw",
		},
		Fetch: FetchConfig{
			Concurrency:    5,
			TimeoutSeconds: 3,
			UserAgent:      "Mozilla/5.0 (compatible; topicrank/1.0)",
		},
		LLM: LLMConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2",
		},
		Serve: ServeConfig{
			Addr:        "127.0.0.1:8080",
			SaveHistory: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		SuggestionPages:   5,
		SummaryPages:      3,
		SummarySentences:  3,
		MaxSubPages:       3,
		SubPageWeight:     0.2,
		FuzzyTolerance:    0.25,
		NGramMin:          2,
		NGramMax:          3,
		MaxSuggestions:    10,
		MinSuggestions:    5,
		CandidateMinLen:   2,
		CandidateMaxLen:   13,
		SentenceMinNative: 10,
		SentenceMinLatin:  20,
		SentenceMaxNative: 100,
		SentenceMaxLatin:  300,
		Concurrency:       4,
	}
}

// DefaultVocabulary is tuned for Brawl Stars (荒野亂鬥) in Traditional Chinese.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		ThemeKeywords: []string{
			"荒野亂鬥", "荒野乱斗", "brawl stars", "brawlstars",
			"ブロスタ", "ブロールスターズ", "브롤스타즈", "бравл старс",
		},
		ExpansionTerm: "荒野亂鬥",
		AuthorityDomains: []string{
			"wikipedia.org", "brawlstars.fandom.com", "supercell.com",
			"brawlify.com", "reddit.com/r/brawlstars", "gamer.com.tw",
		},
		LinkDenylist: []string{
			"登入", "註冊", "隱私", "login", "log in", "sign in", "sign up",
			"register", "privacy", "cookie", "terms",
		},
		StopWords: []string{
			"的", "了", "和", "與", "及", "或", "之", "是", "在", "也", "都", "就",
			"嗎", "呢", "吧", "啊", "the", "a", "an", "of", "and", "or", "to",
			"in", "for", "on", "with", "is", "are", "how", "what",
		},
		SentenceDenylist: []string{
			"登入", "註冊", "版權所有", "cookie", "login", "log in", "sign in",
			"all rights reserved",
		},
		PrimaryScript: "Han",
		ExplanatoryWords: LocalizedList{
			Native: []string{"是", "為", "意思", "攻略", "技巧", "排名", "最強", "玩法", "介紹", "特點"},
			Latin:  []string{"is", "means", "guide", "tips", "ranking", "best", "how to", "explained", "overview"},
		},
		FallbackSuffixes: LocalizedList{
			Native: []string{"攻略", "技巧", "角色排名", "更新資訊", "禮包碼", "上分技巧"},
			Latin:  []string{"guide", "tips", "tier list", "meta", "best brawlers", "update"},
		},
		Insufficient: LocalizedText{
			Native: "根據目前的搜尋結果，無法萃取到關於「%s」的具體描述。",
			Latin:  "The current results do not contain enough information about %q.",
		},
	}
}

func Dir() string {
	if dir := os.Getenv("TOPICRANK_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".topicrank")
}

func DBPath() string {
	return filepath.Join(Dir(), "topicrank.db")
}

func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads a config file layered over Default. A missing file yields
// the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(cfg *Config) error {
	if err := os.MkdirAll(Dir(), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(Path(), data, 0644)
}
