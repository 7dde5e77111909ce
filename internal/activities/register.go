package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ExtractTextActivity)
	w.RegisterActivity(a.ExtractMetadataActivity)
	w.RegisterActivity(a.SummarizeActivity)
	w.RegisterActivity(a.FindRelatedActivity)
	w.RegisterActivity(a.EvaluateActivity)
	w.RegisterActivity(a.RecordActivityActivity)
	w.RegisterActivity(a.SaveArtifactsActivity)
}
