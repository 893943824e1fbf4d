package directory

// areaPageDTO is one page of GET /api/v1/areas.
type areaPageDTO struct {
	AreaCodes     []string `json:"area_codes"`
	NextPageToken string   `json:"next_page_token"`
}
