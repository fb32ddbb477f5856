package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamPayloadKey returns the cache key for an exam with its ordered questions
func (r *CacheKeyStruct) ExamPayloadKey(examID int) string {
	return fmt.Sprintf("exam:%d:payload", examID)
}

// HistoryKey returns the list key holding a user's attempts
func (r *CacheKeyStruct) HistoryKey(userID int) string {
	return fmt.Sprintf("examHistory:%d", userID)
}

// RecentHistoryKey returns the capped list of the latest attempts across users
func (r *CacheKeyStruct) RecentHistoryKey() string {
	return "examHistory:recent"
}

// AuthRateKey returns the rate limit counter key for a client on an auth route
func (r *CacheKeyStruct) AuthRateKey(route, clientIP string) string {
	return fmt.Sprintf("ratelimit:%s:%s", route, clientIP)
}

var CacheKey = NewCacheKeyStruct()
