package webpath

const (
	Api     = "/api"
	Metrics = "/metrics"

	ApiRatings    = Api + "/ratings"
	ApiRating     = ApiRatings + "/:name"
	ApiMatches    = Api + "/matches"
	ApiTrajectory = Api + "/trajectory"
	ApiVerify     = Api + "/verify"
)

func Path() map[string]string {
	return map[string]string{
		"Ratings":    ApiRatings,
		"Rating":     ApiRating,
		"Matches":    ApiMatches,
		"Trajectory": ApiTrajectory,
		"Verify":     ApiVerify,
		"Metrics":    Metrics,
	}
}
