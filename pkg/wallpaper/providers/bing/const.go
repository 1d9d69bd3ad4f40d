package bing

const (
	// BingImageAPI is the image archive endpoint returning today's image as JSON.
	BingImageAPI = "/HPImageArchive.aspx?format=js&mbl=1&idx=0&n=1"

	// BingMarketRegexp validates market codes such as "en-US".
	BingMarketRegexp = `^\w\w-\w\w$`

	// BingResolutionRegexp validates manual resolutions such as "1366x768".
	BingResolutionRegexp = `^\d+[xX]\d+$`

	// WidePaperSuffix is requested in highest mode when the image has a widescreen variant.
	WidePaperSuffix = "1920x1200.jpg"

	// FullHDSuffix is requested in highest mode otherwise.
	FullHDSuffix = "1920x1080.jpg"
)
