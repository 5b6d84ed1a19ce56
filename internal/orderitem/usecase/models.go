package usecase

type FetchResult struct {
	FileID   string
	FilePath string
}
