package sim

// TaskKind names the variant of a Task.
type TaskKind int

const (
	TaskIdle TaskKind = iota
	TaskFetchPod
	TaskReturnPod
)

func (k TaskKind) String() string {
	switch k {
	case TaskIdle:
		return "idle"
	case TaskFetchPod:
		return "fetch_pod"
	case TaskReturnPod:
		return "return_pod"
	default:
		return "unknown"
	}
}

// Task is the work a robot is currently doing. It is a closed set of
// variants: IdleTask, FetchPodTask and ReturnPodTask.
type Task interface {
	Kind() TaskKind
}

// IdleTask means the robot has no work.
type IdleTask struct{}

// FetchPodTask brings Pod from its storage slot Home to Station.
type FetchPodTask struct {
	Pod     PodID
	Station StationID
	Home    WaypointID
}

// ReturnPodTask carries Pod back to its storage slot Home.
type ReturnPodTask struct {
	Pod  PodID
	Home WaypointID
}

func (IdleTask) Kind() TaskKind      { return TaskIdle }
func (FetchPodTask) Kind() TaskKind  { return TaskFetchPod }
func (ReturnPodTask) Kind() TaskKind { return TaskReturnPod }
