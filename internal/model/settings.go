package model

// Settings holds the global access switches of the document library.
type Settings struct {
	RequireLogin    bool
	SecureLinkOnly  bool
	HideFromSitemap bool
}
