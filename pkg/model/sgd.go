package model

// Hyperparams configure stochastic gradient descent.
type Hyperparams struct {
	LearningRate float64
	Momentum     float64
	WeightDecay  float64
}

// SGD applies momentum SGD with L2 weight decay. Velocity buffers are created on the
// first step and sized after the weights.
type SGD struct {
	hp       Hyperparams
	velocity [][]float64
}

func NewSGD(hp Hyperparams) *SGD {
	return &SGD{hp: hp}
}

// Step updates weights in place: v = momentum*v + (g + decay*w); w -= lr*v.
func (o *SGD) Step(weights, grads [][]float64) {
	if o.velocity == nil {
		o.velocity = make([][]float64, len(weights))
		for i, w := range weights {
			o.velocity[i] = make([]float64, len(w))
		}
	}

	for i, w := range weights {
		v := o.velocity[i]
		g := grads[i]
		for j := range w {
			d := g[j] + o.hp.WeightDecay*w[j]
			v[j] = o.hp.Momentum*v[j] + d
			w[j] -= o.hp.LearningRate * v[j]
		}
	}
}
