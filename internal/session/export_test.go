package session

var FrequencyScript = frequencyScript
