package service

// MaxInsightsTake re-exports maxInsightsTake for the external test package.
const MaxInsightsTake = maxInsightsTake
