package featureflag

// NPS is the kill switch for the NPS survey prompt. When it is off nobody is
// eligible, whatever their per-user NPSFeedback flag says.
var NPS = enable("NPS")
